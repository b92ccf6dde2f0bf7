// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package casegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// printInstance writes one generated instance as a single line, syntax
// highlighted unless color is disabled by the environment.
func printInstance(w io.Writer, data []byte) {
	if termenv.EnvNoColor() {
		fmt.Fprintln(w, string(data))
		return
	}

	style := "tokyonight-day"
	if lipgloss.HasDarkBackground() {
		style = "tokyonight-moon"
	}

	var buf strings.Builder
	if err := quick.Highlight(&buf, string(data), "json", "terminal256", style); err != nil {
		fmt.Fprintln(w, string(data))
		return
	}

	fmt.Fprintln(w, strings.TrimRight(buf.String(), "\n"))
}

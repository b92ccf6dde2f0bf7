// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package casegen_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/casegen/casegen/cmd"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"casegen": func() {
			code := cmd.Main()
			os.Exit(code)
		},
	})
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "true")
			env.Setenv("HOME", env.WorkDir)
			return nil
		},
		RequireUniqueNames: true,
	})
}

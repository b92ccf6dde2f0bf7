// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

// Package schema loads JSON Schemas and derives bounded-complexity variants
// of them suitable for instance generation.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// ErrInvalidSchema is returned when the input is neither a readable schema
// file nor a valid inline schema literal.
var ErrInvalidSchema = errors.New("invalid schema")

// Load resolves a schema from a filesystem path or an inline JSON literal.
//
// The input is treated as a path first. When no such file exists, the input
// itself is parsed as JSON. A file that exists but fails to decode is
// reported as a file error rather than falling through to the literal
// interpretation. Files ending in .yaml or .yml are decoded as YAML.
func Load(ctx context.Context, fsys afero.Fs, input string) (map[string]any, error) {
	logger := log.FromContext(ctx)

	if ok, _ := afero.Exists(fsys, input); ok {
		logger.Debug("loading schema", "file", input)

		data, err := afero.ReadFile(fsys, input)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema file %q: %w", input, err)
		}

		root, err := decode(input, data)
		if err != nil {
			return nil, fmt.Errorf("%w: file %q: %v", ErrInvalidSchema, input, err)
		}
		return root, nil
	}

	logger.Debug("no such file, parsing schema as an inline literal")

	var root any
	if err := json.Unmarshal([]byte(input), &root); err != nil {
		return nil, fmt.Errorf("%w: %q is neither a readable file nor valid JSON", ErrInvalidSchema, truncate(input))
	}

	obj, err := asObject(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return obj, nil
}

func decode(name string, data []byte) (map[string]any, error) {
	var root any

	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, err
		}
		return asObject(root)
	}

	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return asObject(root)
}

func asObject(root any) (map[string]any, error) {
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema root must be an object, got %T", root)
	}
	return obj, nil
}

func truncate(s string) string {
	const n = 64
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitCaps(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		key      string
		expected int
	}{
		{
			name:     "array without bound",
			input:    map[string]any{"type": "array"},
			key:      "maxItems",
			expected: 5,
		},
		{
			name:     "array with generous bound",
			input:    map[string]any{"type": "array", "maxItems": float64(100)},
			key:      "maxItems",
			expected: 5,
		},
		{
			name:     "array with tight bound is kept",
			input:    map[string]any{"type": "array", "maxItems": float64(3)},
			key:      "maxItems",
			expected: 3,
		},
		{
			name:     "object without bound",
			input:    map[string]any{"type": "object"},
			key:      "maxProperties",
			expected: 5,
		},
		{
			name:     "object with tight bound is kept",
			input:    map[string]any{"type": "object", "maxProperties": float64(2)},
			key:      "maxProperties",
			expected: 2,
		},
		{
			name:     "string without bound",
			input:    map[string]any{"type": "string"},
			key:      "maxLength",
			expected: 20,
		},
		{
			name:     "string with generous bound",
			input:    map[string]any{"type": "string", "maxLength": float64(50)},
			key:      "maxLength",
			expected: 20,
		},
		{
			name:     "number",
			input:    map[string]any{"type": "number"},
			key:      "maxLength",
			expected: 20,
		},
		{
			name:     "integer",
			input:    map[string]any{"type": "integer"},
			key:      "maxLength",
			expected: 20,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Limit(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.expected, out.(map[string]any)[tc.key])
		})
	}
}

func TestLimitRecursion(t *testing.T) {
	input := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"oneOf": []any{
			map[string]any{"type": "integer"},
		},
	}

	out, err := Limit(input)
	require.NoError(t, err)

	root := out.(map[string]any)
	assert.Equal(t, 5, root["maxProperties"])

	tags := root["properties"].(map[string]any)["tags"].(map[string]any)
	assert.Equal(t, 5, tags["maxItems"])
	assert.Equal(t, 20, tags["items"].(map[string]any)["maxLength"])

	branch := root["oneOf"].([]any)[0].(map[string]any)
	assert.Equal(t, 20, branch["maxLength"])
}

func TestLimitIdempotent(t *testing.T) {
	build := func() map[string]any {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"items": map[string]any{
					"type":     "array",
					"maxItems": float64(7),
					"items":    map[string]any{"type": "string", "maxLength": float64(3)},
				},
			},
		}
	}

	once := build()
	_, err := Limit(once)
	require.NoError(t, err)

	twice := build()
	_, err = Limit(twice)
	require.NoError(t, err)
	_, err = Limit(twice)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestLimitScalarsAndSequences(t *testing.T) {
	out, err := Limit("untouched")
	require.NoError(t, err)
	assert.Equal(t, "untouched", out)

	out, err = Limit(float64(42))
	require.NoError(t, err)
	assert.Equal(t, float64(42), out)

	seq := []any{
		map[string]any{"type": "array"},
		"scalar",
	}
	out, err = Limit(seq)
	require.NoError(t, err)
	assert.Equal(t, 5, out.([]any)[0].(map[string]any)["maxItems"])
	assert.Equal(t, "scalar", out.([]any)[1])
}

func TestLimitTypeListUncapped(t *testing.T) {
	// a type list never equals a single type keyword, no cap applies
	input := map[string]any{"type": []any{"string", "null"}}
	out, err := Limit(input)
	require.NoError(t, err)
	_, ok := out.(map[string]any)["maxLength"]
	assert.False(t, ok)
}

func TestLimitCycle(t *testing.T) {
	m := map[string]any{"type": "object"}
	m["not"] = m

	_, err := Limit(m)
	require.ErrorIs(t, err, ErrSchemaCycle)

	s := make([]any, 1)
	s[0] = s
	_, err = Limit(s)
	require.ErrorIs(t, err, ErrSchemaCycle)
}

func TestLimitSharedSubtree(t *testing.T) {
	shared := map[string]any{"type": "string"}
	input := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": shared,
			"b": shared,
		},
	}

	_, err := Limit(input)
	require.NoError(t, err)
	assert.Equal(t, 20, shared["maxLength"])
}

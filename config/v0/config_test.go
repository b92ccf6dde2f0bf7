// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package v0

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		expected      *Config
		expectedError string
	}{
		{
			name:    "full config",
			content: "schema-version: v0\nnum: 25\ntimeout: 30s\ncheck: true\n",
			expected: &Config{
				SchemaVersion: SchemaVersion,
				Num:           25,
				Timeout:       "30s",
				Check:         true,
			},
		},
		{
			name:    "partial config keeps defaults",
			content: "schema-version: v0\nnum: 7\n",
			expected: &Config{
				SchemaVersion: SchemaVersion,
				Num:           7,
				Timeout:       DefaultTimeout.String(),
			},
		},
		{
			name:          "unsupported schema version",
			content:       "schema-version: v9000\n",
			expectedError: "unsupported config schema version",
		},
		{
			name:          "invalid timeout",
			content:       "schema-version: v0\ntimeout: forever\n",
			expectedError: "not a valid time duration",
		},
		{
			name:          "not yaml",
			content:       "{{{{",
			expectedError: "failed to parse config file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tc.content))
			if tc.expectedError != "" {
				require.ErrorContains(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg)
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, DefaultNum, cfg.Num)
}

func TestSchema(t *testing.T) {
	s := Schema()
	require.NotNil(t, s)

	prop, ok := s.Properties.Get("schema-version")
	require.True(t, ok)
	assert.Equal(t, []any{SchemaVersion}, prop.Enum)
}

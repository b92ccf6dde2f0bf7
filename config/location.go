// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

// Package config provides system-level configuration for casegen
package config

import (
	"os"
	"path/filepath"
)

// DefaultFileName is the default file name for the config file
const DefaultFileName = "config.yaml"

// DefaultDirectory returns the default directory for casegen configuration ($HOME/.casegen)
//
// Currently this relies upon the $HOME environment variable being set
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".casegen"), nil
}

// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

// Package v0 provides the schema for v0 of the system config file for casegen
//
// v0 allows for breaking changes without a major version increase
package v0

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/casegen/casegen/config"
)

// SchemaVersion is the current schema version for configs
const SchemaVersion = "v0"

// Defaults applied when the config file is absent or silent.
const (
	DefaultNum     = 100
	DefaultTimeout = time.Minute
)

// Config is the system configuration file for casegen
type Config struct {
	SchemaVersion string `json:"schema-version"`
	Num           int    `json:"num,omitempty"`
	Timeout       string `json:"timeout,omitempty"`
	Check         bool   `json:"check,omitempty"`
}

// JSONSchemaExtend extends the JSON schema for a config
func (Config) JSONSchemaExtend(schema *jsonschema.Schema) {
	if schemaVersion, ok := schema.Properties.Get("schema-version"); ok && schemaVersion != nil {
		schemaVersion.Description = "Config schema version"
		schemaVersion.Enum = []any{SchemaVersion}
	}
	if num, ok := schema.Properties.Get("num"); ok && num != nil {
		num.Description = "Default number of instances to generate per run"
		num.Minimum = json.Number("1")
	}
	if timeout, ok := schema.Properties.Get("timeout"); ok && timeout != nil {
		timeout.Description = "Default time limit for a single script invocation (e.g. 30s, 1m)"
	}
	if check, ok := schema.Properties.Get("check"); ok && check != nil {
		check.Description = "Validate every generated instance against the limited schema"
	}
}

// DefaultConfig returns a valid config carrying the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		Num:           DefaultNum,
		Timeout:       DefaultTimeout.String(),
	}
}

// LoadConfig loads a config from the given reader
func LoadConfig(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported config schema version: expected %q, got %q", SchemaVersion, cfg.SchemaVersion)
	}

	return cfg, Validate(cfg)
}

// LoadDefaultConfig loads the config from the default location, returning
// the built-in defaults when no config file exists
func LoadDefaultConfig() (*Config, error) {
	dir, err := config.DefaultDirectory()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, config.DefaultFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return LoadConfig(f)
}

// Since every validation operation leverages the same config, only calculate it once to save some compute cycles
//
// This also prevents any schema changes from occuring at runtime
var schemaOnce = sync.OnceValues(func() (string, error) {
	s := Schema()
	b, err := json.Marshal(s)
	return string(b), err
})

// Validate checks if a config adheres to the JSON schema
func Validate(cfg *Config) error {
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return fmt.Errorf(".timeout %q is not a valid time duration", cfg.Timeout)
		}
	}

	schema, err := schemaOnce()
	if err != nil {
		return err
	}

	schemaLoader := gojsonschema.NewStringLoader(schema)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(cfg))
	if err != nil {
		return err
	}

	if result.Valid() {
		return nil
	}

	var resErr error
	for _, err := range result.Errors() {
		resErr = errors.Join(resErr, errors.New(err.String()))
	}

	return resErr
}

// Schema returns the JSON schema for the Config type
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	return reflector.Reflect(&Config{})
}

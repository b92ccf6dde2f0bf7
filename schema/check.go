// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package schema

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Checker validates generated instances against a compiled schema.
type Checker struct {
	schema *gojsonschema.Schema
}

// NewChecker compiles the given schema once so that every instance check
// reuses the compiled form.
func NewChecker(root map[string]any) (*Checker, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(root))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Checker{schema: s}, nil
}

// Check returns an error describing every violation when the instance does
// not conform to the schema.
func (c *Checker) Check(instance any) error {
	result, err := c.schema.Validate(gojsonschema.NewGoLoader(instance))
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

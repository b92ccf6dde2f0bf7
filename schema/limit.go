// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

package schema

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

// ErrSchemaCycle is returned when a schema tree references itself.
var ErrSchemaCycle = errors.New("schema contains a cycle")

// Ceilings applied by Limit. Bounds already at or below a ceiling are left
// alone; Limit never raises an existing bound.
const (
	MaxArrayItems      = 5
	MaxObjectProps     = 5
	MaxScalarLength    = 20
	defaultArrayItems  = 10
	defaultObjectProps = 10
	defaultScalarLen   = 100
)

// Limit recursively rewrites a schema tree so that generated instances stay
// small: arrays are capped at MaxArrayItems elements, objects at
// MaxObjectProps properties, and string/number/integer lengths at
// MaxScalarLength. Mappings are mutated in place; sequences are rewritten
// element-wise; scalars pass through unchanged. Limit is idempotent.
//
// The walk tracks the mappings and sequences currently on its stack and
// fails with ErrSchemaCycle instead of recursing forever on cyclic input.
// Shared acyclic subtrees are fine.
func Limit(node any) (any, error) {
	return limit(node, map[uintptr]struct{}{})
}

func limit(node any, stack map[uintptr]struct{}) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		ptr := reflect.ValueOf(n).Pointer()
		if _, ok := stack[ptr]; ok {
			return nil, ErrSchemaCycle
		}
		stack[ptr] = struct{}{}
		defer delete(stack, ptr)

		switch n["type"] {
		case "array":
			n["maxItems"] = capped(n, "maxItems", defaultArrayItems, MaxArrayItems)
		case "object":
			n["maxProperties"] = capped(n, "maxProperties", defaultObjectProps, MaxObjectProps)
		case "string", "number", "integer":
			n["maxLength"] = capped(n, "maxLength", defaultScalarLen, MaxScalarLength)
		}

		for key, value := range n {
			switch value.(type) {
			case map[string]any, []any:
				limited, err := limit(value, stack)
				if err != nil {
					return nil, fmt.Errorf("at %q: %w", key, err)
				}
				n[key] = limited
			}
		}
		return n, nil

	case []any:
		ptr := reflect.ValueOf(n).Pointer()
		if _, ok := stack[ptr]; ok {
			return nil, ErrSchemaCycle
		}
		stack[ptr] = struct{}{}
		defer delete(stack, ptr)

		for i, item := range n {
			limited, err := limit(item, stack)
			if err != nil {
				return nil, err
			}
			n[i] = limited
		}
		return n, nil

	default:
		return node, nil
	}
}

// capped lowers an existing bound to the ceiling, falling back when the
// schema declares none. Bounds arrive as whatever number type the decoder
// produced, hence the cast.
func capped(n map[string]any, key string, fallback, ceiling int) int {
	bound := fallback
	if raw, ok := n[key]; ok {
		bound = cast.ToInt(raw)
	}
	return min(bound, ceiling)
}

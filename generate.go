// SPDX-License-Identifier: Apache-2.0
// SPDX-FileCopyrightText: 2025-Present casegen authors

// Package casegen generates JSON instances conforming to a JSON Schema and
// optionally feeds them to an external test script.
package casegen

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cast"
)

// ErrUnsatisfiable is returned when a schema admits no instances, e.g. an
// empty enum or contradictory bounds.
var ErrUnsatisfiable = errors.New("schema constraints cannot be satisfied")

// Fallback bounds for nodes that do not declare their own. Schemas that went
// through schema.Limit always carry explicit bounds at or below these.
const (
	defaultMaxItems  = 5
	defaultMaxProps  = 5
	defaultMaxLength = 20
)

// Generator produces JSON instances conforming to a schema.
//
// Randomness is scoped to the generator, never to package-level state: two
// generators created with the same non-zero seed yield identical instance
// sequences for the same schema.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator returns a generator seeded with seed. A zero seed yields a
// randomly seeded generator.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Generate produces a single instance conforming to the schema.
func (g *Generator) Generate(schema map[string]any) (any, error) {
	if enum, ok := schema["enum"].([]any); ok {
		if len(enum) == 0 {
			return nil, fmt.Errorf("%w: empty enum", ErrUnsatisfiable)
		}
		return enum[g.faker.IntRange(0, len(enum)-1)], nil
	}

	if c, ok := schema["const"]; ok {
		return c, nil
	}

	for _, key := range []string{"oneOf", "anyOf"} {
		branches, ok := schema[key].([]any)
		if !ok {
			continue
		}
		if len(branches) == 0 {
			return nil, fmt.Errorf("%w: empty %s", ErrUnsatisfiable, key)
		}
		branch, ok := branches[g.faker.IntRange(0, len(branches)-1)].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s branches must be objects", key)
		}
		return g.Generate(branch)
	}

	if all, ok := schema["allOf"].([]any); ok {
		merged := map[string]any{}
		for k, v := range schema {
			if k != "allOf" {
				merged[k] = v
			}
		}
		for _, raw := range all {
			branch, ok := raw.(map[string]any)
			if !ok {
				return nil, errors.New("allOf branches must be objects")
			}
			maps.Copy(merged, branch)
		}
		return g.Generate(merged)
	}

	switch typ := g.pickType(schema); typ {
	case "object":
		return g.object(schema)
	case "array":
		return g.array(schema)
	case "string":
		return g.str(schema)
	case "integer":
		return g.integer(schema)
	case "number":
		return g.number(schema)
	case "boolean":
		return g.faker.Bool(), nil
	case "null":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported schema type %q", typ)
	}
}

// pickType resolves the effective type of a schema node: a declared type, a
// random pick from a type list, a type inferred from structural keywords, or
// a random scalar type for an unconstrained node.
func (g *Generator) pickType(schema map[string]any) string {
	switch t := schema["type"].(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			return cast.ToString(t[g.faker.IntRange(0, len(t)-1)])
		}
	}

	if _, ok := schema["properties"]; ok {
		return "object"
	}
	if _, ok := schema["items"]; ok {
		return "array"
	}

	scalars := []string{"string", "integer", "number", "boolean", "null"}
	return scalars[g.faker.IntRange(0, len(scalars)-1)]
}

func (g *Generator) object(schema map[string]any) (any, error) {
	props, _ := schema["properties"].(map[string]any)

	maxProps := defaultMaxProps
	if raw, ok := schema["maxProperties"]; ok {
		maxProps = cast.ToInt(raw)
	}

	required := cast.ToStringSlice(schema["required"])

	out := map[string]any{}

	// Required properties first, optional ones as space under maxProperties
	// allows. Property order is sorted so that a seeded generator stays
	// deterministic across runs.
	for _, name := range required {
		if len(out) >= maxProps {
			break
		}
		sub, _ := props[name].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
		}
		value, err := g.Generate(sub)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = value
	}

	for _, name := range slices.Sorted(maps.Keys(props)) {
		if len(out) >= maxProps {
			break
		}
		if _, ok := out[name]; ok {
			continue
		}
		if !g.faker.Bool() {
			continue
		}
		sub, ok := props[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("property %q must be an object", name)
		}
		value, err := g.Generate(sub)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		out[name] = value
	}

	return out, nil
}

func (g *Generator) array(schema map[string]any) (any, error) {
	// tuple form
	if items, ok := schema["items"].([]any); ok {
		out := make([]any, 0, len(items))
		for i, raw := range items {
			sub, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("items[%d] must be an object", i)
			}
			value, err := g.Generate(sub)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, err)
			}
			out = append(out, value)
		}
		return out, nil
	}

	minItems := cast.ToInt(schema["minItems"])
	maxItems := defaultMaxItems
	if raw, ok := schema["maxItems"]; ok {
		maxItems = cast.ToInt(raw)
	}
	if minItems > maxItems {
		return nil, fmt.Errorf("%w: minItems %d exceeds maxItems %d", ErrUnsatisfiable, minItems, maxItems)
	}

	items, _ := schema["items"].(map[string]any)
	if items == nil {
		items = map[string]any{}
	}

	n := g.faker.IntRange(minItems, maxItems)
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		value, err := g.Generate(items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out = append(out, value)
	}
	return out, nil
}

func (g *Generator) str(schema map[string]any) (any, error) {
	if pattern := cast.ToString(schema["pattern"]); pattern != "" {
		return g.faker.Regex(pattern), nil
	}

	switch cast.ToString(schema["format"]) {
	case "uuid":
		return g.faker.UUID(), nil
	case "email":
		return g.faker.Email(), nil
	case "date-time":
		return g.faker.Date().Format(time.RFC3339), nil
	case "date":
		return g.faker.Date().Format(time.DateOnly), nil
	case "uri":
		return g.faker.URL(), nil
	case "ipv4":
		return g.faker.IPv4Address(), nil
	case "hostname":
		return g.faker.DomainName(), nil
	}

	minLen := cast.ToInt(schema["minLength"])
	maxLen := defaultMaxLength
	if raw, ok := schema["maxLength"]; ok {
		maxLen = cast.ToInt(raw)
	}
	if minLen > maxLen {
		return nil, fmt.Errorf("%w: minLength %d exceeds maxLength %d", ErrUnsatisfiable, minLen, maxLen)
	}

	n := g.faker.IntRange(minLen, maxLen)
	if n == 0 {
		return "", nil
	}
	return g.faker.LetterN(uint(n)), nil
}

func (g *Generator) integer(schema map[string]any) (any, error) {
	lo, hi := -1_000_000, 1_000_000
	if raw, ok := schema["minimum"]; ok {
		lo = int(math.Ceil(cast.ToFloat64(raw)))
	}
	if raw, ok := schema["maximum"]; ok {
		hi = int(math.Floor(cast.ToFloat64(raw)))
	}

	// draft 4 boolean form and the numeric form from later drafts
	switch v := schema["exclusiveMinimum"].(type) {
	case bool:
		if v {
			lo++
		}
	case nil:
	default:
		lo = int(math.Floor(cast.ToFloat64(v))) + 1
	}
	switch v := schema["exclusiveMaximum"].(type) {
	case bool:
		if v {
			hi--
		}
	case nil:
	default:
		hi = int(math.Ceil(cast.ToFloat64(v))) - 1
	}

	if lo > hi {
		return nil, fmt.Errorf("%w: integer range [%d, %d] is empty", ErrUnsatisfiable, lo, hi)
	}

	n := g.faker.IntRange(lo, hi)

	if mult := cast.ToInt(schema["multipleOf"]); mult > 0 {
		n -= mod(n, mult)
		if n < lo {
			n += mult
		}
		if n > hi {
			return nil, fmt.Errorf("%w: no multiple of %d in [%d, %d]", ErrUnsatisfiable, mult, lo, hi)
		}
	}

	return n, nil
}

func (g *Generator) number(schema map[string]any) (any, error) {
	lo, hi := -1e6, 1e6
	exclusiveLo, exclusiveHi := false, false

	if raw, ok := schema["minimum"]; ok {
		lo = cast.ToFloat64(raw)
	}
	if raw, ok := schema["maximum"]; ok {
		hi = cast.ToFloat64(raw)
	}

	switch v := schema["exclusiveMinimum"].(type) {
	case bool:
		exclusiveLo = v
	case nil:
	default:
		lo, exclusiveLo = cast.ToFloat64(v), true
	}
	switch v := schema["exclusiveMaximum"].(type) {
	case bool:
		exclusiveHi = v
	case nil:
	default:
		hi, exclusiveHi = cast.ToFloat64(v), true
	}

	if lo > hi || (lo == hi && (exclusiveLo || exclusiveHi)) {
		return nil, fmt.Errorf("%w: number range (%v, %v) is empty", ErrUnsatisfiable, lo, hi)
	}

	n := g.faker.Float64Range(lo, hi)
	if (exclusiveLo && n == lo) || (exclusiveHi && n == hi) {
		n = (lo + hi) / 2
	}
	return n, nil
}

func mod(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

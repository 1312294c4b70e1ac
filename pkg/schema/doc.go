// Package schema provides the value-type system used by graph properties.
//
// It defines a simple type system with built-in types (string, int, float, bool)
// and support for slices, Go struct types and custom validators. Every property
// slot has a Type; the Type validates incoming values and coerces them into a
// canonical Go representation (int, float64, string, bool, []any, or the bound
// Go type).
//
// Basic usage:
//
//	types := schema.NewTypes().Register(schema.Of[Vector]("vector"))
//	typ, err := types.Parse("[float]")
//
// Compatibility between the types at the two ends of a connection is decided by
// an explicit set of Rules registered by the host application:
//
//	rules := schema.DefaultRules().        // exact match, int -> float
//	    Widen("float", "string").
//	    Convertible("int", "float", "bool")
//
//	rules.Compatible(schema.Int(), schema.Float()) // true
//	v, err := rules.Convert(3, schema.Int(), schema.Float()) // 3.0
//
// Schemas map field names to types and validate loosely structured data such
// as node template defaults:
//
//	s := schema.Schema{
//	    "gain":  schema.Float(),
//	    "label": schema.String(),
//	}
//	if err := schema.Validate(s, data); err != nil {
//	    // Handle validation errors
//	}
//
// Conversions are delegated to github.com/spf13/cast; struct types decode maps
// with github.com/mitchellh/mapstructure.
package schema

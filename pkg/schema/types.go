package schema

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Type describes the values a property slot can hold.
// Implementations determine how values are validated and coerced.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	// It is the name persisted in documents.
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Convert coerces a value into the canonical Go representation of this type.
	Convert(value any) (any, error)
	// Zero returns the value an empty slot of this type reads as.
	Zero() any
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Convert(value any) (any, error) {
	return cast.ToStringE(value)
}

func (t *StringType) Zero() any { return "" }

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) Convert(value any) (any, error) {
	return cast.ToIntE(value)
}

func (t *IntType) Zero() any { return 0 }

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

func (t *FloatType) Convert(value any) (any, error) {
	return cast.ToFloat64E(value)
}

func (t *FloatType) Zero() any { return float64(0) }

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) Convert(value any) (any, error) {
	return cast.ToBoolE(value)
}

func (t *BoolType) Zero() any { return false }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// Convert returns a []any whose elements are converted by the element type.
func (t *SliceType) Convert(value any) (any, error) {
	items, err := cast.ToSliceE(value)
	if err != nil {
		// cast only handles []any and []map; fall back to reflection for typed slices
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected slice, got %T", value)
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}
	if items == nil {
		return []any(nil), nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		c, err := t.elemType.Convert(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func (t *SliceType) Zero() any { return []any(nil) }

// Elem returns the element type.
func (t *SliceType) Elem() Type { return t.elemType }

// CustomType applies a user-defined validation function.
// Values are stored as given; Convert only validates.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

func (t *CustomType) Convert(value any) (any, error) {
	if err := t.validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *CustomType) Zero() any { return nil }

// GoType binds a schema name to a concrete Go type, typically a struct.
// Maps are decoded into the Go type with mapstructure.
type GoType[T any] struct {
	name string
}

func (t *GoType[T]) Name() string { return t.name }

func (t *GoType[T]) Validate(value any) error {
	if _, ok := value.(T); !ok {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

func (t *GoType[T]) Convert(value any) (any, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(value); err != nil {
		return nil, fmt.Errorf("convert %T to %s: %w", value, t.name, err)
	}
	return out, nil
}

func (t *GoType[T]) Zero() any {
	var zero T
	return zero
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// Of creates a type for values of the Go type T, persisted under name.
func Of[T any](name string) Type {
	return &GoType[T]{name: name}
}

// Opaque returns a type that accepts any value. It stands in for type names
// a document mentions but the host never registered.
func Opaque(name string) Type {
	return Custom(name, func(any) error { return nil })
}

// ParseType converts a string type name to a Type.
// Supports basic types: "string", "int", "float", "bool", "[string]", "[int]", etc.
func ParseType(typeStr string) (Type, error) {
	return builtins().Parse(typeStr)
}

// ParseTypeMap converts a map of field names to type strings into a Schema.
// Example: {"gain": "float", "taps": "[int]"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	return builtins().ParseMap(typeMap)
}

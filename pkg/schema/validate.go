package schema

import "sort"

// Schema maps field names to their expected types.
// Node templates use one to describe the properties they create.
type Schema map[string]Type

// Fields returns the schema's field names in sorted order.
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that data holds a conforming value for every schema field.
// All failures are reported together, ordered by field name.
func Validate(schema Schema, data map[string]any) error {
	return ValidateFields(schema, data, schema.Fields()...)
}

// ValidateFields validates only the named fields. A name the schema does not
// define is a failure, as is a field missing from data.
func ValidateFields(schema Schema, data map[string]any, fields ...string) error {
	var errs []error
	for _, name := range fields {
		if err := validateField(schema, data, name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateField(schema Schema, data map[string]any, name string) error {
	typ, ok := schema[name]
	if !ok {
		return &ValidationError{Key: name, Reason: "not defined in schema"}
	}
	value, ok := data[name]
	if !ok {
		return &ValidationError{Key: name, Reason: "required"}
	}
	if err := typ.Validate(value); err != nil {
		return &ValidationError{Key: name, Reason: err.Error(), Value: value}
	}
	return nil
}

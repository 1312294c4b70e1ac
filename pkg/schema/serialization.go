package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML writes the schema as a map of field names to type names.
func (s Schema) MarshalYAML() (any, error) {
	if s == nil {
		return nil, nil
	}
	raw := make(map[string]string, len(s))
	for key, typ := range s {
		raw[key] = typ.Name()
	}
	return raw, nil
}

// UnmarshalYAML reads a map of field names to type names using the built-in
// types. Templates naming host types decode with Types.ParseMap instead.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalJSON is used by the HTTP API.
func (s Schema) MarshalJSON() ([]byte, error) {
	raw, _ := s.MarshalYAML()
	return json.Marshal(raw)
}

package schema

import (
	"fmt"
	"sort"
)

// Types is a name-indexed set of value types.
// A graph session resolves persisted type names through one.
type Types struct {
	byName map[string]Type
}

// NewTypes returns a set holding the built-in types.
func NewTypes() *Types {
	return builtins()
}

func builtins() *Types {
	t := &Types{byName: make(map[string]Type)}
	for _, typ := range []Type{String(), Int(), Float(), Bool()} {
		t.byName[typ.Name()] = typ
	}
	return t
}

// Register adds typ, replacing any type with the same name.
func (t *Types) Register(typ Type) *Types {
	t.byName[typ.Name()] = typ
	return t
}

// Lookup returns the type registered under name.
func (t *Types) Lookup(name string) (Type, bool) {
	typ, ok := t.byName[name]
	return typ, ok
}

// Parse resolves a type name, including bracketed slice names such as
// "[float]".
func (t *Types) Parse(typeStr string) (Type, error) {
	// Handle slice types: [string], [int], etc.
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := t.Parse(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	if typ, ok := t.byName[typeStr]; ok {
		return typ, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typeStr)
}

// Names lists the registered type names in sorted order.
func (t *Types) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseMap is ParseTypeMap resolving names through t.
func (t *Types) ParseMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, typeStr := range typeMap {
		typ, err := t.Parse(typeStr)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = typ
	}
	return result, nil
}

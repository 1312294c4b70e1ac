package schema

import "fmt"

type typePair struct {
	from, to string
}

// Rules is the closed set of value-type compatibility rules a host registers.
// Two types are compatible when their names match exactly, when a widening
// from the source to the target was declared, or when both were declared
// convertible.
type Rules struct {
	widen       map[typePair]bool
	convertible map[string]bool
}

// NewRules returns rules that only accept exact matches.
func NewRules() *Rules {
	return &Rules{
		widen:       make(map[typePair]bool),
		convertible: make(map[string]bool),
	}
}

// DefaultRules accepts exact matches and widens int to float.
func DefaultRules() *Rules {
	return NewRules().Widen("int", "float")
}

// Widen declares that values of type from may flow into slots of type to.
func (r *Rules) Widen(from, to string) *Rules {
	r.widen[typePair{from, to}] = true
	return r
}

// Convertible declares that the named types interconvert with each other.
func (r *Rules) Convertible(names ...string) *Rules {
	for _, name := range names {
		r.convertible[name] = true
	}
	return r
}

// Compatible reports whether values of type from may flow into slots of
// type to.
func (r *Rules) Compatible(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Name() == to.Name() {
		return true
	}
	if r.widen[typePair{from.Name(), to.Name()}] {
		return true
	}
	return r.convertible[from.Name()] && r.convertible[to.Name()]
}

// Convert moves value from a slot of type from into the representation of
// type to. Values of identical types pass through unchanged.
func (r *Rules) Convert(value any, from, to Type) (any, error) {
	if from != nil && to != nil && from.Name() == to.Name() {
		return value, nil
	}
	if !r.Compatible(from, to) {
		return nil, fmt.Errorf("no rule converts %s to %s", nameOf(from), nameOf(to))
	}
	if value == nil {
		return to.Zero(), nil
	}
	return to.Convert(value)
}

func nameOf(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

package identity

import "github.com/google/uuid"

// Ref is a deferred reference to an entity of type T.
//
// A Ref is either Unresolved (only the identifier is known) or Resolved (the
// entity is cached). Resolution goes through a Registry and is attempted on
// every call to Resolve until it succeeds. A Ref with the nil identifier is
// empty and never resolves.
type Ref[T Identifiable] struct {
	id       uuid.UUID
	target   T
	resolved bool
}

// NewRef returns an unresolved reference to id.
func NewRef[T Identifiable](id uuid.UUID) *Ref[T] {
	return &Ref[T]{id: id}
}

// RefTo returns a reference already resolved to e.
func RefTo[T Identifiable](e T) *Ref[T] {
	r := &Ref[T]{}
	r.Set(e)
	return r
}

// ParseRef builds an unresolved reference from its string form.
// Malformed identifiers yield the empty reference.
func ParseRef[T Identifiable](s string) *Ref[T] {
	id, err := uuid.Parse(s)
	if err != nil {
		return &Ref[T]{}
	}
	return &Ref[T]{id: id}
}

// ID returns the referenced identifier (uuid.Nil for an empty reference).
func (r *Ref[T]) ID() uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	return r.id
}

// IsEmpty reports whether the reference points nowhere.
func (r *Ref[T]) IsEmpty() bool {
	return r == nil || r.id == uuid.Nil
}

// IsResolved reports whether the target entity is cached.
func (r *Ref[T]) IsResolved() bool {
	return r != nil && r.resolved
}

// Resolve returns the target entity, looking it up in reg on first use.
// The second result is false when the target was never registered or is not
// a T.
func (r *Ref[T]) Resolve(reg *Registry) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	if r.resolved {
		return r.target, true
	}
	if r.id == uuid.Nil || reg == nil {
		return zero, false
	}
	e, ok := reg.Lookup(r.id)
	if !ok {
		return zero, false
	}
	t, ok := e.(T)
	if !ok {
		return zero, false
	}
	r.target = t
	r.resolved = true
	return t, true
}

// Set points the reference at e, storing entity and identifier together.
// No registry lookup happens.
func (r *Ref[T]) Set(e T) {
	r.target = e
	r.id = e.ID()
	r.resolved = true
}

// Clear empties the reference.
func (r *Ref[T]) Clear() {
	var zero T
	r.target = zero
	r.id = uuid.Nil
	r.resolved = false
}

// String returns the identifier in canonical form.
func (r *Ref[T]) String() string {
	return r.ID().String()
}

// SameTarget reports whether two references carry the same identifier.
func SameTarget[T Identifiable](a, b *Ref[T]) bool {
	return a.ID() == b.ID()
}

package identity

import "github.com/google/uuid"

// Identifiable is implemented by every entity the registry can index.
type Identifiable interface {
	ID() uuid.UUID
}

// Rebindable is an Identifiable whose identifier may be changed explicitly.
type Rebindable interface {
	Identifiable
	SetID(id uuid.UUID)
}

// Registry maps identifiers to entities.
// Entries are never removed implicitly: an entity deleted from a graph stays
// resolvable so that partially loaded documents keep working.
type Registry struct {
	entries map[uuid.UUID]Identifiable
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[uuid.UUID]Identifiable),
	}
}

// Register indexes e under its current identifier.
// An existing entry with the same identifier is overwritten.
func (r *Registry) Register(e Identifiable) {
	r.entries[e.ID()] = e
}

// Lookup returns the entity registered under id.
func (r *Registry) Lookup(id uuid.UUID) (Identifiable, bool) {
	if id == uuid.Nil {
		return nil, false
	}
	e, ok := r.entries[id]
	return e, ok
}

// Rebind changes the identifier of e and re-indexes it.
// The old identifier stops resolving, unless it had already been taken over
// by a different entity.
func (r *Registry) Rebind(e Rebindable, newID uuid.UUID) {
	oldID := e.ID()
	if current, ok := r.entries[oldID]; ok && current == Identifiable(e) {
		delete(r.entries, oldID)
	}
	e.SetID(newID)
	r.entries[newID] = e
}

// Len reports the number of indexed identifiers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Each calls fn for every registered entity, in no particular order.
func (r *Registry) Each(fn func(Identifiable)) {
	for _, e := range r.entries {
		fn(e)
	}
}

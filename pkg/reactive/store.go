package reactive

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/internal/logging"
)

// ErrTypeMismatch is returned by Assign when a value does not fit the field.
var ErrTypeMismatch = errors.New("value type mismatch")

// Change describes one effective write.
type Change struct {
	Owner    any
	Field    Field
	OldValue any
	NewValue any
}

// ChangeOf is the typed form of Change delivered to descriptor subscribers.
type ChangeOf[T any] struct {
	Owner    any
	OldValue T
	NewValue T
}

type subscription struct {
	fn     func(Change)
	active bool
}

// Store holds the property values of a single entity.
// It is not safe for concurrent use.
type Store struct {
	owner  any
	values map[Field]any
	subs   map[Field][]*subscription
	all    []*subscription
	logger *slog.Logger
}

// NewStore creates an empty store for owner.
// A nil logger discards diagnostics.
func NewStore(owner any, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		owner:  owner,
		values: make(map[Field]any),
		subs:   make(map[Field][]*subscription),
		logger: logger,
	}
}

// Owner returns the entity the store belongs to.
func (s *Store) Owner() any {
	return s.owner
}

// Has reports whether f holds a value (written or materialized).
func (s *Store) Has(f Field) bool {
	_, ok := s.values[f]
	return ok
}

// Value reads f without knowing its static type, materializing the default.
func (s *Store) Value(f Field) any {
	return f.read(s)
}

// Assign writes v into f after checking its dynamic type.
// A mismatching value is logged and dropped, leaving the previous value.
// The boolean result reports whether a change was fired.
func (s *Store) Assign(f Field, v any) (bool, error) {
	if !f.Accepts(v) {
		s.logger.Warn("dropping write of mismatched type",
			"field", f.Name(),
			"owner", f.Owner(),
			"want", f.ValueType().String(),
			"got", fmt.Sprintf("%T", v),
		)
		return false, fmt.Errorf("%s.%s: %w: want %s, got %T", f.Owner(), f.Name(), ErrTypeMismatch, f.ValueType(), v)
	}
	return f.assign(s, v), nil
}

// SubscribeAll registers fn for every field of the store.
// It returns a function that removes the subscription.
func (s *Store) SubscribeAll(fn func(Change)) func() {
	sub := &subscription{fn: fn, active: true}
	s.all = append(s.all, sub)
	return func() {
		sub.active = false
		s.all = prune(s.all, sub)
	}
}

func (s *Store) subscribe(f Field, fn func(Change)) func() {
	sub := &subscription{fn: fn, active: true}
	s.subs[f] = append(s.subs[f], sub)
	return func() {
		sub.active = false
		s.subs[f] = prune(s.subs[f], sub)
	}
}

func (s *Store) dispatch(c Change) {
	// Snapshot: handlers may (un)subscribe while we iterate.
	targeted := append([]*subscription(nil), s.subs[c.Field]...)
	global := append([]*subscription(nil), s.all...)

	for _, sub := range targeted {
		if sub.active {
			sub.fn(c)
		}
	}
	for _, sub := range global {
		if sub.active {
			sub.fn(c)
		}
	}
}

func prune(list []*subscription, target *subscription) []*subscription {
	out := list[:0:0]
	for _, sub := range list {
		if sub != target {
			out = append(out, sub)
		}
	}
	return out
}

// Get returns the value of d, materializing and storing its default on first
// access.
func Get[T any](s *Store, d *Descriptor[T]) T {
	if v, ok := s.values[d]; ok {
		if t, ok := v.(T); ok {
			return t
		}
	}
	v := d.newDefault()
	s.values[d] = v
	return v
}

// Set writes v into d. Writes equal to the current value are ignored.
// It reports whether a change notification was fired.
func Set[T any](s *Store, d *Descriptor[T], v T) bool {
	old := Get(s, d)
	if d.equal(old, v) {
		return false
	}
	s.values[d] = v
	s.dispatch(Change{
		Owner:    s.owner,
		Field:    d,
		OldValue: old,
		NewValue: v,
	})
	return true
}

// Subscribe registers fn for changes of d on s.
// It returns a function that removes the subscription.
func Subscribe[T any](s *Store, d *Descriptor[T], fn func(ChangeOf[T])) func() {
	return s.subscribe(d, func(c Change) {
		old, _ := c.OldValue.(T)
		nv, _ := c.NewValue.(T)
		fn(ChangeOf[T]{Owner: c.Owner, OldValue: old, NewValue: nv})
	})
}

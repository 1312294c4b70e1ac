package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
)

// ErrUnknownKind is returned when no entry is registered for a kind.
var ErrUnknownKind = errors.New("unknown node kind")

// Behavior attaches runtime behaviour (transforms, validators, subscriptions)
// to a node. It runs once per node per graph context and must tolerate nodes
// whose ports were restored from a document.
type Behavior func(n *domain.Node) error

// Entry is what the registry knows about one kind.
type Entry struct {
	Template *Template
	Behavior Behavior
}

// Registry manages node kinds. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Entry
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to report nodes of unknown kinds.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		kinds:  make(map[string]Entry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register sets the behaviour of kind, keeping any template.
// If a behaviour with the same kind exists, it is overwritten.
func (r *Registry) Register(kind string, b Behavior) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.kinds[kind]
	e.Behavior = b
	r.kinds[kind] = e
}

// RegisterTemplate validates t and registers it under t.Kind together with
// an optional behaviour.
func (r *Registry) RegisterTemplate(t Template, b Behavior) error {
	if err := t.Validate(nil); err != nil {
		return fmt.Errorf("template %q: %w", t.Kind, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[t.Kind] = Entry{Template: &t, Behavior: b}
	return nil
}

// Lookup returns the entry for kind.
func (r *Registry) Lookup(kind string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.kinds[kind]
	return e, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Apply runs the behaviour registered for n's kind.
// Nodes without a kind, or whose kind has no behaviour, are left alone.
func (r *Registry) Apply(n *domain.Node) error {
	kind := n.Kind()
	if kind == "" {
		return nil
	}
	e, ok := r.Lookup(kind)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if e.Behavior == nil {
		return nil
	}
	if err := e.Behavior(n); err != nil {
		return fmt.Errorf("bind %s (%s): %w", n.Name(), kind, err)
	}
	return nil
}

// Bind applies behaviours to every node of g, children included.
// Unknown kinds are logged and skipped so documents from richer catalogs
// still open; behaviour failures are returned together.
func (r *Registry) Bind(g *domain.Graph) error {
	var errs []error
	g.Walk(func(n *domain.Node) bool {
		err := r.Apply(n)
		switch {
		case errors.Is(err, ErrUnknownKind):
			r.logger.Warn("no behaviour for node kind", "node", n.Name(), "kind", n.Kind())
		case err != nil:
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

// Instantiate creates a node of kind in g from its template and binds its
// behaviour. Extra options are applied after the template's.
func (r *Registry) Instantiate(g *domain.Graph, kind string, opts ...domain.NodeOption) (*domain.Node, error) {
	e, ok := r.Lookup(kind)
	if !ok || e.Template == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	n, err := e.Template.Build(g, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Apply(n); err != nil {
		g.RemoveNode(n)
		return nil, err
	}
	return n, nil
}

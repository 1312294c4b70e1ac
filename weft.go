package weft

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/catalog"
	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/persistence/middleware"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/session"
)

// Editor is the high-level entry point for the weft library.
// It ties a document store, a node catalog and the graph options shared by
// every graph it opens.
type Editor struct {
	store      ports.DocumentStore
	redact     []string
	encryption *middleware.EncryptionConfig
	catalog    *catalog.Registry
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	graphOpts  []domain.Option
	logger     *slog.Logger
	err        error

	sessions *session.Manager
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithStore sets the document store. Defaults to an in-memory store.
func WithStore(store ports.DocumentStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithEncryption seals documents at rest with AES-256-GCM. The active key
// must be 32 bytes; fallback keys are tried on load, for rotation.
func WithEncryption(activeKey []byte, fallbackKeys ...[]byte) Option {
	return func(e *Editor) {
		if len(activeKey) != 32 {
			e.err = fmt.Errorf("encryption key must be 32 bytes, got %d", len(activeKey))
			return
		}
		e.encryption = &middleware.EncryptionConfig{
			ActiveKey:    activeKey,
			FallbackKeys: fallbackKeys,
		}
	}
}

// WithRedaction masks the values of properties whose names match any of the
// given regular expressions before documents are stored. Redaction runs
// before encryption.
func WithRedaction(patterns ...string) Option {
	return func(e *Editor) {
		for _, p := range patterns {
			if _, err := regexp.Compile(p); err != nil {
				e.err = fmt.Errorf("invalid redaction pattern %q: %w", p, err)
				return
			}
		}
		e.redact = append(e.redact, patterns...)
	}
}

// WithCatalog sets the node catalog. Defaults to a registry holding the
// built-in kinds.
func WithCatalog(r *catalog.Registry) Option {
	return func(e *Editor) {
		e.catalog = r
	}
}

// WithLocker serializes edits across processes. A zero ttl keeps the
// session default.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Editor) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks on every graph.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.graphOpts = append(e.graphOpts, domain.WithHooks(hooks))
	}
}

// WithGraphOptions passes options to every graph the editor creates or loads.
func WithGraphOptions(opts ...domain.Option) Option {
	return func(e *Editor) {
		e.graphOpts = append(e.graphOpts, opts...)
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New initializes an Editor.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.err != nil {
		return nil, e.err
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.catalog == nil {
		e.catalog = catalog.NewRegistry(catalog.WithLogger(e.logger))
		if err := catalog.RegisterBuiltins(e.catalog); err != nil {
			return nil, fmt.Errorf("failed to register built-in kinds: %w", err)
		}
	}

	sessionOpts := []session.Option{
		session.WithBinder(e.catalog),
		session.WithGraphOptions(e.graphOpts...),
		session.WithLogger(e.logger),
	}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
		if e.lockTTL > 0 {
			sessionOpts = append(sessionOpts, session.WithLockTTL(e.lockTTL))
		}
	}
	var mws []middleware.Middleware
	if len(e.redact) > 0 {
		mws = append(mws, middleware.NewRedactionMiddleware(e.redact))
	}
	if e.encryption != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(*e.encryption))
	}
	e.sessions = session.NewManager(middleware.Chain(e.store, mws...), sessionOpts...)

	return e, nil
}

// NewGraph creates an empty graph with the editor's options.
func (e *Editor) NewGraph() (*domain.Graph, error) {
	return e.sessions.NewGraph()
}

// Open loads a stored graph. Returns ports.ErrDocumentNotFound if id does
// not exist.
func (e *Editor) Open(ctx context.Context, id string) (*domain.Graph, *domain.LoadReport, error) {
	return e.sessions.Open(ctx, id)
}

// OpenOrCreate loads a stored graph, creating an empty one if absent.
func (e *Editor) OpenOrCreate(ctx context.Context, id string) (*domain.Graph, error) {
	return e.sessions.OpenOrCreate(ctx, id)
}

// Save stores g under id.
func (e *Editor) Save(ctx context.Context, id string, g *domain.Graph) error {
	return e.sessions.Save(ctx, id, g)
}

// Update applies fn to the stored graph and saves the result.
func (e *Editor) Update(ctx context.Context, id string, fn func(*domain.Graph) error) error {
	return e.sessions.Update(ctx, id, fn)
}

// Delete removes a stored graph.
func (e *Editor) Delete(ctx context.Context, id string) error {
	return e.sessions.Delete(ctx, id)
}

// List returns the ids of stored graphs.
func (e *Editor) List(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// Import decodes a document and binds catalog behaviour to its nodes.
func (e *Editor) Import(data []byte, format codec.Format) (*domain.Graph, *domain.LoadReport, error) {
	doc, err := codec.Unmarshal(data, format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse document: %w", err)
	}
	opts := append([]domain.Option{domain.WithLogger(e.logger)}, e.graphOpts...)
	g, report, err := domain.Load(doc, opts...)
	if err != nil {
		return nil, report, err
	}
	if err := e.catalog.Bind(g); err != nil {
		return nil, report, err
	}
	return g, report, nil
}

// Export encodes g in the given format.
func (e *Editor) Export(g *domain.Graph, format codec.Format) ([]byte, error) {
	doc, err := g.Encode()
	if err != nil {
		return nil, err
	}
	return codec.Marshal(doc, format)
}

// Sessions returns the session manager backing the editor.
func (e *Editor) Sessions() *session.Manager {
	return e.sessions
}

// Catalog returns the node catalog.
func (e *Editor) Catalog() *catalog.Registry {
	return e.catalog
}

// Logger returns the editor's logger.
func (e *Editor) Logger() *slog.Logger {
	return e.logger
}

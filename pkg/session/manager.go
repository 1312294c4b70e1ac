package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed holder can block a document.
const DefaultLockTTL = 30 * time.Second

// Binder re-attaches host behaviour (transforms, validators) to a loaded graph.
type Binder interface {
	Bind(g *domain.Graph) error
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to stored graph documents.
// Every operation on an id runs under that id's lock; each load builds a fresh
// domain.Graph, so graphs are never shared between callers.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-document locks, ref counted

	locker    ports.DistributedLocker
	lockTTL   time.Duration
	binder    Binder
	graphOpts []domain.Option
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock lease. Defaults to DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithBinder runs b on every graph the Manager loads or creates.
func WithBinder(b Binder) Option {
	return func(m *Manager) {
		m.binder = b
	}
}

// WithGraphOptions sets the options every graph is built with.
func WithGraphOptions(opts ...domain.Option) Option {
	return func(m *Manager) {
		m.graphOpts = append(m.graphOpts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over the given document store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// NewGraph builds an empty graph with the Manager's options and binder.
func (m *Manager) NewGraph() (*domain.Graph, error) {
	g := domain.NewGraph(m.opts()...)
	if err := m.bind(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (m *Manager) opts() []domain.Option {
	return append([]domain.Option{domain.WithLogger(m.logger)}, m.graphOpts...)
}

func (m *Manager) bind(g *domain.Graph) error {
	if m.binder == nil {
		return nil
	}
	if err := m.binder.Bind(g); err != nil {
		return fmt.Errorf("failed to bind graph behaviour: %w", err)
	}
	return nil
}

// load must run under the id's lock.
func (m *Manager) load(ctx context.Context, id string) (*domain.Graph, *domain.LoadReport, error) {
	doc, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	g, report, err := domain.Load(doc, m.opts()...)
	if err != nil {
		return nil, report, fmt.Errorf("failed to load graph %s: %w", id, err)
	}
	if !report.Clean() {
		m.logger.Warn("graph loaded with problems",
			"graph_id", id,
			"problems", len(report.Problems),
			"dangling", len(report.Dangling),
		)
	}
	if err := m.bind(g); err != nil {
		return nil, report, err
	}
	return g, report, nil
}

func (m *Manager) save(ctx context.Context, id string, g *domain.Graph) error {
	doc, err := g.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", id, err)
	}
	return m.store.Save(ctx, id, doc)
}

// Open loads the stored graph into a fresh context.
// Returns ports.ErrDocumentNotFound if the document does not exist.
func (m *Manager) Open(ctx context.Context, id string) (*domain.Graph, *domain.LoadReport, error) {
	var (
		g      *domain.Graph
		report *domain.LoadReport
	)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		g, report, err = m.load(ctx, id)
		return err
	})
	return g, report, err
}

// OpenOrCreate opens the graph, creating and persisting an empty one if absent.
func (m *Manager) OpenOrCreate(ctx context.Context, id string) (*domain.Graph, error) {
	var g *domain.Graph
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		g, _, err = m.load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ports.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check graph existence: %w", err)
		}

		if g, err = m.NewGraph(); err != nil {
			return err
		}
		// Persist immediately to reserve the id.
		if err := m.save(ctx, id, g); err != nil {
			return fmt.Errorf("failed to initialize graph: %w", err)
		}
		return nil
	})
	return g, err
}

// Save encodes and persists g under id.
func (m *Manager) Save(ctx context.Context, id string, g *domain.Graph) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.save(ctx, id, g)
	})
}

// Update loads the graph, applies fn and saves the result, all under the
// document's lock. Nothing is saved when fn returns an error.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.Graph) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		g, _, err := m.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}
		return m.save(ctx, id, g)
	})
}

// Delete removes the document from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock executes fn while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"graph_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

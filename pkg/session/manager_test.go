package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/schema"
	"github.com/aretw0/weft/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, id string, doc *codec.Element) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, id, doc)
}

func (s SlowStore) Load(ctx context.Context, id string) (*codec.Element, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func TestManager_UpdateIsSerialized(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	_, err := manager.OpenOrCreate(ctx, id)
	require.NoError(t, err)

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := manager.Update(ctx, id, func(g *domain.Graph) error {
				g.NewNode(fmt.Sprintf("node-%d", i))
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	g, report, err := manager.Open(ctx, id)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, writers, g.NodeCount(), "every read-modify-write must survive")
}

func TestManager_OpenOrCreate(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := manager.OpenOrCreate(ctx, id)
			assert.NoError(t, err)
			assert.NotNil(t, g)
		}()
	}
	wg.Wait()

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

func TestManager_OpenMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, _, err := manager.Open(context.Background(), "absent")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)

	err = manager.Update(context.Background(), "absent", func(*domain.Graph) error { return nil })
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}

func TestManager_RoundTripKeepsConnections(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	g, err := manager.NewGraph()
	require.NoError(t, err)
	out := g.NewNode("Source").AddOutput("Out", schema.Float(), 3.0)
	in := g.NewNode("Sink").AddInput("In", schema.Float(), 0.0)
	require.True(t, g.Connect(out, in))
	require.NoError(t, manager.Save(ctx, "pipeline", g))

	loaded, _, err := manager.Open(ctx, "pipeline")
	require.NoError(t, err)
	lout, ok := loaded.Property(out.ID())
	require.True(t, ok)
	lin, ok := loaded.Property(in.ID())
	require.True(t, ok)
	assert.True(t, lout.IsConnected(lin))

	lout.SetValue(7.0)
	assert.Equal(t, 7.0, lin.Value())
}

func TestManager_UpdateErrorDiscardsChanges(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	_, err := manager.OpenOrCreate(ctx, "doc")
	require.NoError(t, err)

	boom := errors.New("boom")
	err = manager.Update(ctx, "doc", func(g *domain.Graph) error {
		g.NewNode("Discarded")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	g, _, err := manager.Open(ctx, "doc")
	require.NoError(t, err)
	assert.Zero(t, g.NodeCount())
}

type kindCounter struct {
	mu    sync.Mutex
	seen  int
	fails bool
}

func (b *kindCounter) Bind(g *domain.Graph) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fails {
		return errors.New("no such kind")
	}
	b.seen++
	return nil
}

func TestManager_Binder(t *testing.T) {
	binder := &kindCounter{}
	manager := session.NewManager(memory.NewStore(), session.WithBinder(binder))
	ctx := context.Background()

	_, err := manager.OpenOrCreate(ctx, "doc")
	require.NoError(t, err)
	_, _, err = manager.Open(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, 2, binder.seen, "created and loaded graphs are both bound")

	binder.fails = true
	_, _, err = manager.Open(ctx, "doc")
	assert.Error(t, err)
}

func TestManager_GraphOptions(t *testing.T) {
	var connects int
	manager := session.NewManager(memory.NewStore(), session.WithGraphOptions(
		domain.WithHooks(domain.LifecycleHooks{
			OnConnect: func(*domain.ConnectionEvent) { connects++ },
		}),
	))

	g, err := manager.NewGraph()
	require.NoError(t, err)
	out := g.NewNode("A").AddOutput("Out", schema.Int(), 1)
	in := g.NewNode("B").AddInput("In", schema.Int(), 0)
	require.True(t, g.Connect(out, in))
	assert.Equal(t, 1, connects)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	manager := session.NewManager(store,
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	err := manager.WithLock(ctx, "doc", func(ctx context.Context) error {
		assert.True(t, mr.Exists("test:lock:doc"), "distributed lock held inside WithLock")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:doc"))

	_, err = manager.OpenOrCreate(ctx, "doc")
	require.NoError(t, err)
	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "doc")
}

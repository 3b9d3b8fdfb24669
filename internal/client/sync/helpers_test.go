package sync

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/client/storage/boltdb"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/models"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *boltdb.Storage {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func putRecord(t *testing.T, store storage.LocalStore, records ...*models.Record) {
	t.Helper()

	require.NoError(t, store.Write(context.Background(), func(tx storage.Tx) error {
		for _, r := range records {
			if err := tx.Put(r); err != nil {
				return err
			}
		}
		return nil
	}))
}

func findRecord(t *testing.T, store storage.LocalStore, kind, id string) *models.Record {
	t.Helper()

	r, err := store.Find(context.Background(), kind, id)
	require.NoError(t, err)
	return r
}

func progressRecord(id string, position float64, updatedAt time.Time) *models.Record {
	return &models.Record{
		ID:        id,
		Kind:      models.KindProgress,
		OwnerID:   "owner-1",
		EntityID:  "ep-1",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
		Fields:    models.Progress{EpisodeID: "ep-1", Position: position, Duration: 3600}.Fields(),
	}
}

func commentRecord(id, text string, updatedAt time.Time) *models.Record {
	return &models.Record{
		ID:        id,
		Kind:      models.KindComment,
		OwnerID:   "owner-1",
		EntityID:  "ep-1",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
		Fields:    models.Comment{EpisodeID: "ep-1", Text: text, TimestampSec: 12}.Fields(),
	}
}

// memoryRemote is an in-memory remote authority with a unique primary key
type memoryRemote struct {
	records map[string]*models.Record
	calls   map[string]int
	mu      stdsync.Mutex
}

func newMemoryRemote() *memoryRemote {
	return &memoryRemote{
		records: make(map[string]*models.Record),
		calls:   make(map[string]int),
	}
}

func remoteKey(kind, id string) string {
	return kind + "/" + id
}

func (m *memoryRemote) Fetch(ctx context.Context, kind string, q api.FetchQuery) ([]*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["fetch"]++

	var out []*models.Record
	for _, r := range m.records {
		if r.Kind != kind || (q.EntityID != "" && r.EntityID != q.EntityID) {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (m *memoryRemote) Get(ctx context.Context, kind, id string) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["get"]++

	r, ok := m.records[remoteKey(kind, id)]
	if !ok {
		return nil, &api.RemoteError{Op: "get", Err: api.ErrNotFound, Status: 404}
	}
	return r.Clone(), nil
}

func (m *memoryRemote) Insert(ctx context.Context, r *models.Record) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["insert"]++

	key := remoteKey(r.Kind, r.ID)
	if _, ok := m.records[key]; ok {
		return nil, &api.RemoteError{Op: "insert", Err: api.ErrConflict, Status: 409}
	}
	m.records[key] = remoteCopy(r)
	return remoteCopy(r), nil
}

func (m *memoryRemote) Update(ctx context.Context, r *models.Record) (*models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++

	m.records[remoteKey(r.Kind, r.ID)] = remoteCopy(r)
	return remoteCopy(r), nil
}

func (m *memoryRemote) Delete(ctx context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["delete"]++

	key := remoteKey(kind, id)
	if _, ok := m.records[key]; !ok {
		return &api.RemoteError{Op: "delete", Err: api.ErrNotFound, Status: 404}
	}
	delete(m.records, key)
	return nil
}

func (m *memoryRemote) put(r *models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[remoteKey(r.Kind, r.ID)] = remoteCopy(r)
}

func (m *memoryRemote) get(kind, id string) (*models.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[remoteKey(kind, id)]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

func (m *memoryRemote) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memoryRemote) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// remoteCopy drops local-only state the way the wire mapping does
func remoteCopy(r *models.Record) *models.Record {
	c := r.Clone()
	c.NeedsSync = false
	c.SyncedAt = nil
	c.Deleted = false
	return c
}

type testEnv struct {
	store  *boltdb.Storage
	remote *memoryRemote
	clock  *clock.Fake
	coord  *Coordinator
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Debounce = 30 * time.Second
	opts.TTL = 5 * time.Minute
	opts.NetworkTimeout = time.Second
	return opts
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  newTestStore(t),
		remote: newMemoryRemote(),
		clock:  clock.NewFake(testStart),
	}
	env.coord = NewCoordinator(Deps{
		Store:    env.store,
		Meta:     env.store,
		Remote:   env.remote,
		Clock:    env.clock,
		Policies: models.DefaultPolicies(5),
	}, "owner-1", testOptions(), testLogger())
	t.Cleanup(env.coord.Dispose)

	return env
}

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/podsync/internal/client/feed"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/merge"
	"github.com/iudanet/podsync/internal/models"
)

func latest(t *testing.T, sub storage.Subscription) []*models.Record {
	t.Helper()

	select {
	case records, ok := <-sub.C():
		require.True(t, ok, "subscription closed")
		return records
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func progressFields(position, duration float64, completed bool) models.Fields {
	return models.Progress{EpisodeID: "ep-1", Position: position, Duration: duration, Completed: completed}.Fields()
}

func TestCoordinator_WriteCreatesPendingRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub, err := env.coord.Observe(ctx, storage.Predicate{Kind: models.KindProgress})
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, latest(t, sub))

	rec, err := env.coord.Write(ctx, models.KindProgress, "", "ep-1", progressFields(120, 3600, false))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "owner-1", rec.OwnerID)
	assert.Equal(t, "ep-1", rec.EntityID)
	assert.True(t, rec.NeedsSync)
	assert.Nil(t, rec.SyncedAt)
	assert.Equal(t, testStart, rec.UpdatedAt)

	observed := latest(t, sub)
	require.Len(t, observed, 1)
	assert.Equal(t, rec.ID, observed[0].ID)

	// Запись локальная: сеть не трогается до flush
	assert.Equal(t, 0, env.remote.size())

	count, err := env.coord.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCoordinator_UnknownKind(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.coord.Write(context.Background(), "episode", "", "", models.Fields{})
	assert.ErrorIs(t, err, models.ErrUnknownKind)
}

func TestCoordinator_DebouncedWritesPushOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.coord.Write(ctx, models.KindProgress, "", "ep-1", progressFields(100, 3600, false))
	require.NoError(t, err)
	for _, position := range []float64{200, 300} {
		env.clock.Advance(10 * time.Second)
		_, err = env.coord.Write(ctx, models.KindProgress, rec.ID, "", models.Fields{models.FieldPosition: position})
		require.NoError(t, err)
	}

	env.clock.Advance(29 * time.Second)
	assert.Equal(t, 0, env.remote.size(), "debounce window restarts on every write")

	env.clock.Advance(time.Second)
	assert.Equal(t, 1, env.remote.count("insert"))

	remote, ok := env.remote.get(models.KindProgress, rec.ID)
	require.True(t, ok)
	assert.InDelta(t, 300, remote.Fields.Float(models.FieldPosition), 0.001)
	assert.InDelta(t, 3600, remote.Fields.Float(models.FieldDuration), 0.001, "partial write keeps other fields")

	local := findRecord(t, env.store, models.KindProgress, rec.ID)
	assert.False(t, local.NeedsSync)
	assert.NotNil(t, local.SyncedAt)
}

func TestCoordinator_WriteGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.coord.Write(ctx, models.KindProgress, "p-1", "ep-1", progressFields(450, 3600, false))
	require.NoError(t, err)

	t.Run("zero within recency window", func(t *testing.T) {
		env.clock.Advance(time.Second)
		got, err := env.coord.Write(ctx, models.KindProgress, rec.ID, "", models.Fields{models.FieldPosition: 0.0})
		require.NoError(t, err)
		assert.InDelta(t, 450, got.Fields.Float(models.FieldPosition), 0.001)
	})

	t.Run("beyond duration", func(t *testing.T) {
		got, err := env.coord.Write(ctx, models.KindProgress, rec.ID, "", models.Fields{models.FieldPosition: 3700.0})
		require.NoError(t, err)
		assert.InDelta(t, 450, got.Fields.Float(models.FieldPosition), 0.001)
	})

	t.Run("within tolerance", func(t *testing.T) {
		env.clock.Advance(5 * time.Second)
		got, err := env.coord.Write(ctx, models.KindProgress, rec.ID, "", models.Fields{models.FieldPosition: 3603.0})
		require.NoError(t, err)
		assert.InDelta(t, 3603, got.Fields.Float(models.FieldPosition), 0.001)
	})

	t.Run("zero after recency window", func(t *testing.T) {
		env.clock.Advance(5 * time.Second)
		got, err := env.coord.Write(ctx, models.KindProgress, rec.ID, "", models.Fields{models.FieldPosition: 0.0})
		require.NoError(t, err)
		assert.InDelta(t, 0, got.Fields.Float(models.FieldPosition), 0.001)
	})

	t.Run("invalid new record", func(t *testing.T) {
		got, err := env.coord.Write(ctx, models.KindProgress, "p-2", "ep-2", progressFields(-1, 3600, false))
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = env.coord.Find(ctx, models.KindProgress, "p-2")
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	})

	t.Run("empty comment", func(t *testing.T) {
		got, err := env.coord.Write(ctx, models.KindComment, "", "ep-1", models.Fields{models.FieldText: ""})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCoordinator_StickyNeverRegresses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.coord.Write(ctx, models.KindProgress, "p-1", "ep-1", progressFields(3590, 3600, true))
	require.NoError(t, err)
	assert.True(t, rec.Fields.Bool(models.FieldCompleted))

	env.clock.Advance(10 * time.Second)
	got, err := env.coord.Write(ctx, models.KindProgress, rec.ID, "", progressFields(200, 3600, false))
	require.NoError(t, err)
	assert.True(t, got.Fields.Bool(models.FieldCompleted))
	assert.InDelta(t, 200, got.Fields.Float(models.FieldPosition), 0.001)
}

func TestCoordinator_NoOpWriteIsNotQueued(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.coord.Write(ctx, models.KindComment, "c-1", "ep-1", models.Comment{EpisodeID: "ep-1", Text: "hi"}.Fields())
	require.NoError(t, err)
	_, err = env.coord.FlushNow(ctx)
	require.NoError(t, err)

	env.clock.Advance(time.Minute)
	got, err := env.coord.Write(ctx, models.KindComment, rec.ID, "ep-1", models.Fields{models.FieldText: "hi"})
	require.NoError(t, err)
	assert.False(t, got.NeedsSync)
	assert.Equal(t, testStart, got.UpdatedAt)
	assert.Equal(t, 0, env.clock.Pending(), "nothing scheduled")
}

func TestCoordinator_MilestoneFlushesImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.coord.Write(ctx, models.KindProgress, "p-1", "ep-1", progressFields(3000, 3600, false))
	require.NoError(t, err)

	env.clock.Advance(0)
	assert.Equal(t, 0, env.remote.size())

	_, err = env.coord.Write(ctx, models.KindProgress, rec.ID, "", models.Fields{
		models.FieldPosition:  3600.0,
		models.FieldCompleted: true,
	})
	require.NoError(t, err)

	env.clock.Advance(0)
	remote, ok := env.remote.get(models.KindProgress, rec.ID)
	require.True(t, ok, "completion pushed without waiting for debounce")
	assert.True(t, remote.Fields.Bool(models.FieldCompleted))
}

func TestCoordinator_DeletePropagates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, err := env.coord.Write(ctx, models.KindComment, "", "ep-1", models.Comment{EpisodeID: "ep-1", Text: "oops"}.Fields())
	require.NoError(t, err)
	_, err = env.coord.FlushNow(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, env.remote.size())

	sub, err := env.coord.Observe(ctx, storage.Predicate{Kind: models.KindComment})
	require.NoError(t, err)
	defer sub.Close()
	require.Len(t, latest(t, sub), 1)

	require.NoError(t, env.coord.Delete(ctx, models.KindComment, rec.ID))
	assert.Empty(t, latest(t, sub), "tombstone hidden from observers")

	count, err := env.coord.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	result, err := env.coord.FlushNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Deleted)
	assert.Equal(t, 0, env.remote.size())

	all, err := env.store.Query(ctx, storage.Predicate{Kind: models.KindComment, IncludeDeleted: true})
	require.NoError(t, err)
	assert.Empty(t, all, "tombstone removed after remote delete")
}

func TestCoordinator_DeleteMissing(t *testing.T) {
	env := newTestEnv(t)

	err := env.coord.Delete(context.Background(), models.KindComment, "nope")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestCoordinator_RecoverPushesUnsyncedRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Состояние после падения: записи помечены, очередь в памяти потеряна
	for _, id := range []string{"p-1", "p-2", "p-3"} {
		r := progressRecord(id, 100, testStart)
		r.EntityID = "ep-" + id
		r.NeedsSync = true
		putRecord(t, env.store, r)
	}
	synced := progressRecord("p-4", 100, testStart)
	synced.EntityID = "ep-4"
	synced.MarkSynced(testStart)
	putRecord(t, env.store, synced)

	result, err := env.coord.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pushed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 3, env.remote.count("insert"))
	assert.Equal(t, 0, env.remote.count("update"))

	count, err := env.coord.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCoordinator_CleanupDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	completed := progressRecord("a", 100, testStart.Add(-3*time.Minute))
	completed.Fields.Set(models.FieldCompleted, true)
	furthest := progressRecord("b", 900, testStart.Add(-2*time.Minute))
	middle := progressRecord("c", 500, testStart.Add(-time.Minute))
	other := progressRecord("d", 50, testStart)
	other.EntityID = "ep-2"
	putRecord(t, env.store, completed, furthest, middle, other)

	result, err := env.coord.CleanupDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Groups)
	assert.Equal(t, 2, result.Removed)

	left, err := env.coord.Query(ctx, storage.Predicate{Kind: models.KindProgress, EntityID: "ep-1"})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "b", left[0].ID)
	assert.True(t, left[0].Fields.Bool(models.FieldCompleted), "sticky flag of a duplicate survives")
	assert.True(t, left[0].NeedsSync)

	flush, err := env.coord.FlushNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flush.Pushed)
	assert.Equal(t, 2, flush.Deleted)
	assert.Equal(t, 0, flush.Failed)

	again, err := env.coord.CleanupDuplicates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Groups)
}

func TestCoordinator_PullMergesRemote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.remote.put(progressRecord("p-1", 700, testStart.Add(-time.Minute)))

	result, err := env.coord.Pull(ctx, Scope{Kind: models.KindProgress}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	again, err := env.coord.Pull(ctx, Scope{Kind: models.KindProgress}, false)
	require.NoError(t, err)
	assert.True(t, again.Fresh)
	assert.Equal(t, 1, env.remote.count("fetch"))

	got, err := env.coord.Find(ctx, models.KindProgress, "p-1")
	require.NoError(t, err)
	assert.InDelta(t, 700, got.Fields.Float(models.FieldPosition), 0.001)
	assert.False(t, got.NeedsSync)
}

// Комментарий создаётся локально, правится через ленту изменений,
// затем снова локально: последняя локальная правка уходит на сервер.
func TestCoordinator_CommentRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reconciler := NewReconciler(env.store, env.remote, nil, models.DefaultPolicies(5), env.clock,
		merge.DefaultOptions(), time.Second, nil, testLogger())

	created, err := env.coord.Write(ctx, models.KindComment, "C1", "ep-1",
		models.Comment{EpisodeID: "ep-1", Text: "first", TimestampSec: 42}.Fields())
	require.NoError(t, err)
	assert.True(t, created.NeedsSync)

	flush, err := env.coord.FlushNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flush.Pushed)
	assert.False(t, findRecord(t, env.store, models.KindComment, "C1").NeedsSync)

	env.clock.Advance(time.Minute)
	edited := commentRecord("C1", "edited elsewhere", env.clock.Now())
	env.remote.put(edited)

	applied, err := reconciler.Apply(ctx, updateEvent(edited, false))
	require.NoError(t, err)
	assert.Equal(t, ApplyMerged, applied)

	local := findRecord(t, env.store, models.KindComment, "C1")
	assert.Equal(t, "edited elsewhere", local.Fields.String(models.FieldText))
	assert.False(t, local.NeedsSync)

	env.clock.Advance(time.Second)
	mine, err := env.coord.Write(ctx, models.KindComment, "C1", "", models.Fields{models.FieldText: "edited here"})
	require.NoError(t, err)
	assert.True(t, mine.NeedsSync)

	flush, err = env.coord.FlushNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flush.Pushed)
	assert.Equal(t, 1, env.remote.count("update"))

	remote, ok := env.remote.get(models.KindComment, "C1")
	require.True(t, ok)
	assert.Equal(t, "edited here", remote.Fields.String(models.FieldText))
	assert.False(t, findRecord(t, env.store, models.KindComment, "C1").NeedsSync)
}

func TestCoordinator_StorageFailurePropagates(t *testing.T) {
	failure := errors.New("disk full")
	store := &storage.LocalStoreMock{
		WriteFunc: func(ctx context.Context, fn func(tx storage.Tx) error) error {
			return failure
		},
		QueryFunc: func(ctx context.Context, pred storage.Predicate) ([]*models.Record, error) {
			return nil, failure
		},
	}
	coord := NewCoordinator(Deps{
		Store:    store,
		Remote:   &RemoteMock{},
		Clock:    clock.NewFake(testStart),
		Policies: models.DefaultPolicies(5),
	}, "owner-1", testOptions(), testLogger())
	defer coord.Dispose()
	ctx := context.Background()

	_, err := coord.Write(ctx, models.KindComment, "", "ep-1", models.Fields{models.FieldText: "x"})
	assert.ErrorIs(t, err, failure)

	assert.ErrorIs(t, coord.Delete(ctx, models.KindComment, "c-1"), failure)

	_, err = coord.PendingCount(ctx)
	assert.ErrorIs(t, err, failure)

	_, err = coord.Recover(ctx)
	assert.ErrorIs(t, err, failure)
}

func TestCoordinator_ReconnectRunsForcedPull(t *testing.T) {
	ch := make(chan feed.Message)
	changes := &FeedMock{
		SubscribeFunc: func(ctx context.Context, topic string) <-chan feed.Message {
			go func() {
				<-ctx.Done()
				close(ch)
			}()
			return ch
		},
	}
	store := newTestStore(t)
	remote := newMemoryRemote()
	coord := NewCoordinator(Deps{
		Store:    store,
		Meta:     store,
		Remote:   remote,
		Feed:     changes,
		Clock:    clock.NewFake(testStart),
		Policies: models.DefaultPolicies(5),
	}, "owner-1", testOptions(), testLogger())
	defer coord.Dispose()
	ctx := context.Background()

	_, err := coord.Pull(ctx, Scope{Kind: models.KindComment}, false)
	require.NoError(t, err)
	remote.put(commentRecord("missed", "sent while offline", testStart))

	require.NoError(t, coord.Start(ctx, models.KindComment))
	ch <- feed.Message{Reconnected: true}
	// Следующая отправка проходит только после завершения обработки переподключения
	ch <- feed.Message{Event: deleteEvent(models.KindComment, "unrelated", testStart)}

	assert.Equal(t, 2, remote.count("fetch"), "TTL bypassed after reconnect")
	got, err := coord.Find(ctx, models.KindComment, "missed")
	require.NoError(t, err)
	assert.Equal(t, "sent while offline", got.Fields.String(models.FieldText))
}

func TestCoordinator_Dispose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.coord.Write(ctx, models.KindComment, "c-1", "ep-1", models.Fields{models.FieldText: "unsent"})
	require.NoError(t, err)

	env.coord.Dispose()
	env.coord.Dispose()

	// Debounce-таймер остановлен, запись остаётся для Recover
	env.clock.Advance(time.Minute)
	assert.Equal(t, 0, env.remote.size())
	assert.True(t, findRecord(t, env.store, models.KindComment, "c-1").NeedsSync)

	_, err = env.coord.Write(ctx, models.KindComment, "c-1", "", models.Fields{models.FieldText: "late"})
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, env.coord.Delete(ctx, models.KindComment, "c-1"), ErrDisposed)
	assert.ErrorIs(t, env.coord.Start(ctx, models.KindComment), ErrDisposed)
	_, err = env.coord.Observe(ctx, storage.Predicate{})
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = env.coord.Pull(ctx, Scope{Kind: models.KindComment}, true)
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = env.coord.FlushNow(ctx)
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = env.coord.Recover(ctx)
	assert.ErrorIs(t, err, ErrDisposed)
	_, err = env.coord.CleanupDuplicates(ctx)
	assert.ErrorIs(t, err, ErrDisposed)
}

package sync

import (
	"context"
	"errors"
	stdsync "sync"
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

func newTestReconciler(t *testing.T, remote Remote, changes Feed, onReconnect func(context.Context, string)) (*Reconciler, storage.LocalStore) {
	t.Helper()

	store := newTestStore(t)
	r := NewReconciler(store, remote, changes, models.DefaultPolicies(5), clock.NewFake(testStart),
		merge.DefaultOptions(), time.Second, onReconnect, testLogger())
	t.Cleanup(r.Close)
	return r, store
}

func updateEvent(r *models.Record, partial bool) models.ChangeEvent {
	ev := models.ChangeEvent{
		ID:       "ev-" + r.ID,
		Topic:    r.Kind,
		Kind:     models.EventUpdate,
		RecordID: r.ID,
		At:       r.UpdatedAt,
	}
	if !partial {
		ev.Record = r.Clone()
	}
	return ev
}

func deleteEvent(kind, id string, at time.Time) models.ChangeEvent {
	return models.ChangeEvent{ID: "del-" + id, Topic: kind, Kind: models.EventDelete, RecordID: id, At: at}
}

func TestReconciler_PartialEventFetchesRecord(t *testing.T) {
	remote := newMemoryRemote()
	rec, store := newTestReconciler(t, remote, nil, nil)

	remote.put(commentRecord("c-1", "from server", testStart))
	result, err := rec.Apply(context.Background(), updateEvent(commentRecord("c-1", "", testStart), true))
	require.NoError(t, err)
	assert.Equal(t, ApplyMerged, result)
	assert.Equal(t, 1, remote.count("get"))

	got := findRecord(t, store, models.KindComment, "c-1")
	assert.Equal(t, "from server", got.Fields.String(models.FieldText))
	assert.False(t, got.NeedsSync)
}

func TestReconciler_CompleteEventSkipsFetch(t *testing.T) {
	remote := &RemoteMock{}
	rec, store := newTestReconciler(t, remote, nil, nil)

	result, err := rec.Apply(context.Background(), updateEvent(commentRecord("c-1", "inline", testStart), false))
	require.NoError(t, err)
	assert.Equal(t, ApplyMerged, result)
	assert.Empty(t, remote.GetCalls())
	assert.Equal(t, "inline", findRecord(t, store, models.KindComment, "c-1").Fields.String(models.FieldText))
}

func TestReconciler_PartialEventForMissingRecordIsIgnored(t *testing.T) {
	rec, _ := newTestReconciler(t, newMemoryRemote(), nil, nil)

	result, err := rec.Apply(context.Background(), updateEvent(commentRecord("gone", "", testStart), true))
	require.NoError(t, err)
	assert.Equal(t, ApplyIgnored, result)
}

func TestReconciler_DeleteIsUnconditional(t *testing.T) {
	rec, store := newTestReconciler(t, &RemoteMock{}, nil, nil)
	ctx := context.Background()

	// Локальная правка новее удаления и ещё не отправлена
	local := commentRecord("c-1", "local edit", testStart.Add(time.Hour))
	local.NeedsSync = true
	putRecord(t, store, local)

	result, err := rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart))
	require.NoError(t, err)
	assert.Equal(t, ApplyDeleted, result)

	_, err = store.Find(ctx, models.KindComment, "c-1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestReconciler_DeleteAfterUpdateWithSkewedClock(t *testing.T) {
	tests := []struct {
		name     string
		updateAt time.Time
		deleteAt time.Time
		lateAt   time.Time
	}{
		{
			name:     "update clock ahead of server",
			updateAt: testStart.Add(time.Minute),
			deleteAt: testStart.Add(10 * time.Second),
			lateAt:   testStart.Add(30 * time.Second),
		},
		{
			name:     "update clock behind server",
			updateAt: testStart,
			deleteAt: testStart.Add(10 * time.Second),
			lateAt:   testStart.Add(5 * time.Second),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, store := newTestReconciler(t, &RemoteMock{}, nil, nil)
			ctx := context.Background()

			result, err := rec.Apply(ctx, updateEvent(commentRecord("c-1", "edited", tt.updateAt), false))
			require.NoError(t, err)
			require.Equal(t, ApplyMerged, result)

			result, err = rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", tt.deleteAt))
			require.NoError(t, err)
			assert.Equal(t, ApplyDeleted, result)

			_, err = store.Find(ctx, models.KindComment, "c-1")
			assert.ErrorIs(t, err, storage.ErrRecordNotFound)

			// Запоздавшая правка не воскрешает запись
			result, err = rec.Apply(ctx, updateEvent(commentRecord("c-1", "late", tt.lateAt), false))
			require.NoError(t, err)
			assert.Equal(t, ApplyIgnored, result)

			_, err = store.Find(ctx, models.KindComment, "c-1")
			assert.ErrorIs(t, err, storage.ErrRecordNotFound)
		})
	}
}

func TestReconciler_DeleteKeepsHighestWatermark(t *testing.T) {
	rec, store := newTestReconciler(t, &RemoteMock{}, nil, nil)
	ctx := context.Background()

	_, err := rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart.Add(time.Minute)))
	require.NoError(t, err)
	// Повторная доставка с более ранним временем не понижает водяной знак
	_, err = rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart))
	require.NoError(t, err)

	result, err := rec.Apply(ctx, updateEvent(commentRecord("c-1", "late", testStart.Add(30*time.Second)), false))
	require.NoError(t, err)
	assert.Equal(t, ApplyIgnored, result)

	_, err = store.Find(ctx, models.KindComment, "c-1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestReconciler_DeleteDropsAppliedVersion(t *testing.T) {
	rec, _ := newTestReconciler(t, &RemoteMock{}, nil, nil)
	ctx := context.Background()

	for _, id := range []string{"c-1", "c-2", "c-3"} {
		_, err := rec.Apply(ctx, updateEvent(commentRecord(id, "text", testStart), false))
		require.NoError(t, err)
	}
	_, err := rec.Apply(ctx, deleteEvent(models.KindComment, "c-2", testStart.Add(time.Second)))
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Len(t, rec.lastApplied, 2)
	assert.NotContains(t, rec.lastApplied, models.KindComment+"/c-2")
}

func TestReconciler_UpdateAfterDeleteDoesNotResurrect(t *testing.T) {
	rec, store := newTestReconciler(t, &RemoteMock{}, nil, nil)
	ctx := context.Background()

	putRecord(t, store, commentRecord("c-1", "v1", testStart))

	// Удаление доставлено раньше предшествовавшего ему обновления
	_, err := rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart.Add(2*time.Second)))
	require.NoError(t, err)

	result, err := rec.Apply(ctx, updateEvent(commentRecord("c-1", "v2", testStart.Add(time.Second)), false))
	require.NoError(t, err)
	assert.Equal(t, ApplyIgnored, result)

	_, err = store.Find(ctx, models.KindComment, "c-1")
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestReconciler_WatermarkSurvivesRestart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	newRec := func() *Reconciler {
		return NewReconciler(store, &RemoteMock{}, nil, models.DefaultPolicies(5), clock.NewFake(testStart),
			merge.DefaultOptions(), time.Second, nil, testLogger())
	}

	_, err := newRec().Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart))
	require.NoError(t, err)

	// Новый экземпляр не помнит событий, но водяной знак хранится в базе
	result, err := newRec().Apply(ctx, updateEvent(commentRecord("c-1", "late", testStart.Add(-time.Second)), false))
	require.NoError(t, err)
	assert.Equal(t, ApplyIgnored, result)
}

func TestReconciler_InsertRecreatesAfterDelete(t *testing.T) {
	rec, store := newTestReconciler(t, &RemoteMock{}, nil, nil)
	ctx := context.Background()

	_, err := rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart))
	require.NoError(t, err)

	ev := updateEvent(commentRecord("c-1", "again", testStart.Add(time.Second)), false)
	ev.Kind = models.EventInsert
	result, err := rec.Apply(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, ApplyMerged, result)
	assert.Equal(t, "again", findRecord(t, store, models.KindComment, "c-1").Fields.String(models.FieldText))
}

func TestReconciler_NewerUpdateRecreatesAfterDelete(t *testing.T) {
	tests := []struct {
		at       time.Time
		name     string
		want     ApplyResult
		recreate bool
	}{
		{name: "equal to delete time", at: testStart, want: ApplyIgnored},
		{name: "older than delete", at: testStart.Add(-time.Second), want: ApplyIgnored},
		{name: "newer than delete", at: testStart.Add(time.Second), want: ApplyMerged, recreate: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, store := newTestReconciler(t, &RemoteMock{}, nil, nil)
			ctx := context.Background()

			_, err := rec.Apply(ctx, deleteEvent(models.KindComment, "c-1", testStart))
			require.NoError(t, err)

			result, err := rec.Apply(ctx, updateEvent(commentRecord("c-1", "rewritten", tt.at), false))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)

			_, err = store.Find(ctx, models.KindComment, "c-1")
			if tt.recreate {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, storage.ErrRecordNotFound)
			}
		})
	}
}

func TestReconciler_IgnoresOutOfOrderUpdates(t *testing.T) {
	remote := newMemoryRemote()
	rec, store := newTestReconciler(t, remote, nil, nil)
	ctx := context.Background()

	newer := commentRecord("c-1", "newer", testStart.Add(2*time.Second))
	older := commentRecord("c-1", "older", testStart.Add(time.Second))

	result, err := rec.Apply(ctx, updateEvent(newer, false))
	require.NoError(t, err)
	assert.Equal(t, ApplyMerged, result)

	// Частичное устаревшее событие не вызывает даже запроса к серверу
	result, err = rec.Apply(ctx, updateEvent(older, true))
	require.NoError(t, err)
	assert.Equal(t, ApplyIgnored, result)
	assert.Equal(t, 0, remote.count("get"))

	// Повтор того же события тоже игнорируется
	result, err = rec.Apply(ctx, updateEvent(newer, false))
	require.NoError(t, err)
	assert.Equal(t, ApplyIgnored, result)

	assert.Equal(t, "newer", findRecord(t, store, models.KindComment, "c-1").Fields.String(models.FieldText))
}

func TestReconciler_UnknownTopic(t *testing.T) {
	rec, _ := newTestReconciler(t, &RemoteMock{}, nil, nil)

	_, err := rec.Apply(context.Background(), models.ChangeEvent{Topic: "episode", RecordID: "x", Kind: models.EventUpdate})
	assert.ErrorIs(t, err, models.ErrUnknownKind)
}

func TestReconciler_StartConsumesFeedAndClose(t *testing.T) {
	channels := map[string]chan feed.Message{
		models.KindComment:  make(chan feed.Message),
		models.KindProgress: make(chan feed.Message),
	}
	changes := &FeedMock{
		SubscribeFunc: func(ctx context.Context, topic string) <-chan feed.Message {
			ch := channels[topic]
			go func() {
				<-ctx.Done()
				close(ch)
			}()
			return ch
		},
	}

	var mu stdsync.Mutex
	var reconnected []string
	onReconnect := func(ctx context.Context, topic string) {
		mu.Lock()
		reconnected = append(reconnected, topic)
		mu.Unlock()
	}

	remote := newMemoryRemote()
	rec, store := newTestReconciler(t, remote, changes, onReconnect)
	ctx := context.Background()

	require.NoError(t, rec.Start(ctx, models.KindComment, models.KindProgress))
	assert.ErrorIs(t, rec.Start(ctx, models.KindComment), ErrAlreadyStarted)
	assert.Len(t, changes.SubscribeCalls(), 2)

	ev := updateEvent(commentRecord("c-1", "live", testStart), false)
	ev.Topic = ""
	channels[models.KindComment] <- feed.Message{Event: ev}
	channels[models.KindProgress] <- feed.Message{Reconnected: true}
	// Синхронизация: следующее сообщение принимается только после обработки предыдущего
	channels[models.KindComment] <- feed.Message{Event: deleteEvent(models.KindComment, "other", testStart)}

	assert.Equal(t, "live", findRecord(t, store, models.KindComment, "c-1").Fields.String(models.FieldText))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reconnected) == 1 && reconnected[0] == models.KindProgress
	}, time.Second, 10*time.Millisecond)

	rec.Close()
	rec.Close()

	// После Close подписки сняты: каналы закрыты
	_, open := <-channels[models.KindComment]
	assert.False(t, open)
}

func TestReconciler_EventFailureDoesNotStopFeed(t *testing.T) {
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
	remote := &RemoteMock{
		GetFunc: func(ctx context.Context, kind, id string) (*models.Record, error) {
			if id == "broken" {
				return nil, errors.New("boom")
			}
			return commentRecord(id, "fetched", testStart), nil
		},
	}
	rec, store := newTestReconciler(t, remote, changes, nil)

	require.NoError(t, rec.Start(context.Background(), models.KindComment))
	ch <- feed.Message{Event: updateEvent(commentRecord("broken", "", testStart), true)}
	ch <- feed.Message{Event: updateEvent(commentRecord("c-2", "", testStart), true)}
	ch <- feed.Message{Event: deleteEvent(models.KindComment, "sync-point", testStart)}

	assert.Equal(t, "fetched", findRecord(t, store, models.KindComment, "c-2").Fields.String(models.FieldText))
}

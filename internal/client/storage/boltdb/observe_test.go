package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/models"
)

func receive(t *testing.T, sub storage.Subscription) []*models.Record {
	t.Helper()

	select {
	case records, ok := <-sub.C():
		require.True(t, ok, "subscription closed unexpectedly")
		return records
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func assertNoSnapshot(t *testing.T, sub storage.Subscription) {
	t.Helper()

	select {
	case records := <-sub.C():
		t.Fatalf("unexpected snapshot with %d records", len(records))
	default:
	}
}

func TestObserve_EmitsInitialSnapshot(t *testing.T) {
	store := createTestStorage(t)
	putRecords(t, store, createTestRecord("rec-1", "owner-1", "ep-1", 10))

	sub, err := store.Observe(context.Background(), storage.Predicate{Kind: models.KindProgress})
	require.NoError(t, err)
	defer sub.Close()

	records := receive(t, sub)
	require.Len(t, records, 1)
	assert.Equal(t, "rec-1", records[0].ID)
}

func TestObserve_NotifiesBeforeWriteReturns(t *testing.T) {
	store := createTestStorage(t)

	sub, err := store.Observe(context.Background(), storage.Predicate{Kind: models.KindProgress})
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub))

	putRecords(t, store, createTestRecord("rec-1", "owner-1", "ep-1", 10))

	// Снимок уже в канале сразу после возврата из Write
	select {
	case records := <-sub.C():
		require.Len(t, records, 1)
		assert.Equal(t, 10.0, records[0].Fields.Float(models.FieldPosition))
	default:
		t.Fatal("snapshot must be delivered before Write returns")
	}
}

func TestObserve_IgnoresOtherKinds(t *testing.T) {
	store := createTestStorage(t)

	sub, err := store.Observe(context.Background(), storage.Predicate{Kind: models.KindComment})
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	putRecords(t, store, createTestRecord("rec-1", "owner-1", "ep-1", 10))
	assertNoSnapshot(t, sub)
}

func TestObserve_KeepsOnlyLatestSnapshot(t *testing.T) {
	store := createTestStorage(t)

	sub, err := store.Observe(context.Background(), storage.Predicate{Kind: models.KindProgress})
	require.NoError(t, err)
	defer sub.Close()

	// Не читаем канал между коммитами
	for i := 1; i <= 3; i++ {
		r := createTestRecord("rec-1", "owner-1", "ep-1", float64(i*100))
		putRecords(t, store, r)
	}

	records := receive(t, sub)
	require.Len(t, records, 1)
	assert.Equal(t, 300.0, records[0].Fields.Float(models.FieldPosition))
	assertNoSnapshot(t, sub)
}

func TestObserve_HidesTombstones(t *testing.T) {
	store := createTestStorage(t)
	r := createTestRecord("rec-1", "owner-1", "ep-1", 10)
	putRecords(t, store, r)

	sub, err := store.Observe(context.Background(), storage.Predicate{Kind: models.KindProgress})
	require.NoError(t, err)
	defer sub.Close()
	require.Len(t, receive(t, sub), 1)

	r.Deleted = true
	putRecords(t, store, r)
	assert.Empty(t, receive(t, sub))
}

func TestObserve_CloseStopsDelivery(t *testing.T) {
	store := createTestStorage(t)

	sub, err := store.Observe(context.Background(), storage.Predicate{})
	require.NoError(t, err)
	receive(t, sub)

	sub.Close()
	sub.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)

	// Запись после закрытия подписки не паникует
	putRecords(t, store, createTestRecord("rec-1", "owner-1", "ep-1", 10))

	store.subsMu.Lock()
	assert.Empty(t, store.subs)
	store.subsMu.Unlock()
}

func TestObserve_ContextCancelClosesSubscription(t *testing.T) {
	store := createTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := store.Observe(ctx, storage.Predicate{})
	require.NoError(t, err)
	receive(t, sub)

	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.C():
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestObserve_StorageCloseClosesSubscriptions(t *testing.T) {
	store, err := New(context.Background(), t.TempDir()+"/observe.db")
	require.NoError(t, err)

	sub, err := store.Observe(context.Background(), storage.Predicate{})
	require.NoError(t, err)
	receive(t, sub)

	require.NoError(t, store.Close())

	_, ok := <-sub.C()
	assert.False(t, ok)
}

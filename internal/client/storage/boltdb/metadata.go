package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/podsync/internal/client/storage"
)

const (
	keyLastSyncPrefix = "last_sync:"
)

// SaveLastSyncTime saves the time of the last successful pull of scope
func (s *Storage) SaveLastSyncTime(ctx context.Context, scope string, at time.Time) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Конвертируем время в bytes
		value := make([]byte, 8)
		binary.BigEndian.PutUint64(value, uint64(at.UnixNano()))

		if err := bucket.Put([]byte(keyLastSyncPrefix+scope), value); err != nil {
			return fmt.Errorf("failed to save last sync time: %w", err)
		}

		return nil
	})
}

// GetLastSyncTime retrieves the time of the last successful pull of scope
// Returns zero time if the scope was never pulled
func (s *Storage) GetLastSyncTime(ctx context.Context, scope string) (time.Time, error) {
	var at time.Time

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		value := bucket.Get([]byte(keyLastSyncPrefix + scope))
		if value == nil {
			// Scope ещё ни разу не синхронизировался
			return nil
		}
		if len(value) != 8 {
			return fmt.Errorf("corrupted last sync time for scope %q", scope)
		}

		at = time.Unix(0, int64(binary.BigEndian.Uint64(value))).UTC()
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return at, nil
}

package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/models"
)

// Write runs fn in a serialized bbolt update transaction and notifies
// affected subscriptions after a successful commit.
func (s *Storage) Write(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}

	wtx := &writeTx{touched: make(map[string]struct{})}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		wtx.tx = tx
		return fn(wtx)
	})
	if err != nil {
		return err
	}

	// Уведомляем подписчиков до возврата из Write
	s.notify(wtx.touched)
	return nil
}

// Find retrieves a record by kind and id
func (s *Storage) Find(ctx context.Context, kind, id string) (*models.Record, error) {
	var record *models.Record

	err := s.view(func(tx *bbolt.Tx) error {
		var err error
		record, err = getRecord(tx, kind, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Query returns all records matching pred
func (s *Storage) Query(ctx context.Context, pred storage.Predicate) ([]*models.Record, error) {
	var records []*models.Record

	err := s.view(func(tx *bbolt.Tx) error {
		var err error
		records, err = queryRecords(tx, pred)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	return records, nil
}

func (s *Storage) view(fn func(tx *bbolt.Tx) error) error {
	// Закрытие базы и чтение не должны пересекаться
	s.writeMu.Lock()
	db := s.db
	s.writeMu.Unlock()

	if db == nil {
		return storage.ErrStorageClosed
	}
	return db.View(fn)
}

// writeTx implements storage.Tx on top of a bbolt read-write transaction
type writeTx struct {
	tx      *bbolt.Tx
	touched map[string]struct{}
}

func (w *writeTx) Get(kind, id string) (*models.Record, error) {
	return getRecord(w.tx, kind, id)
}

func (w *writeTx) Put(record *models.Record) error {
	if record == nil || record.ID == "" || record.Kind == "" {
		return storage.ErrInvalidRecord
	}

	bucket, err := w.tx.Bucket(bucketRecords).CreateBucketIfNotExists([]byte(record.Kind))
	if err != nil {
		return fmt.Errorf("failed to create %s bucket: %w", record.Kind, err)
	}

	// Сериализуем запись в JSON
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := bucket.Put([]byte(record.ID), data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	w.touched[record.Kind] = struct{}{}
	return nil
}

func (w *writeTx) Delete(kind, id string) error {
	bucket := w.tx.Bucket(bucketRecords).Bucket([]byte(kind))
	if bucket == nil {
		return nil
	}

	if err := bucket.Delete([]byte(id)); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	w.touched[kind] = struct{}{}
	return nil
}

func (w *writeTx) Query(pred storage.Predicate) ([]*models.Record, error) {
	return queryRecords(w.tx, pred)
}

func (w *writeTx) SetDeleteWatermark(kind, id string, at time.Time) error {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, uint64(at.UnixNano()))

	if err := w.tx.Bucket(bucketTombstones).Put(tombstoneKey(kind, id), value); err != nil {
		return fmt.Errorf("failed to save delete watermark: %w", err)
	}
	return nil
}

func (w *writeTx) DeleteWatermark(kind, id string) (time.Time, bool, error) {
	value := w.tx.Bucket(bucketTombstones).Get(tombstoneKey(kind, id))
	if value == nil {
		return time.Time{}, false, nil
	}
	if len(value) != 8 {
		return time.Time{}, false, fmt.Errorf("corrupted delete watermark for %s/%s", kind, id)
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(value))).UTC(), true, nil
}

func (w *writeTx) ClearDeleteWatermark(kind, id string) error {
	if err := w.tx.Bucket(bucketTombstones).Delete(tombstoneKey(kind, id)); err != nil {
		return fmt.Errorf("failed to clear delete watermark: %w", err)
	}
	return nil
}

func tombstoneKey(kind, id string) []byte {
	return []byte(kind + "/" + id)
}

func getRecord(tx *bbolt.Tx, kind, id string) (*models.Record, error) {
	bucket := tx.Bucket(bucketRecords).Bucket([]byte(kind))
	if bucket == nil {
		return nil, storage.ErrRecordNotFound
	}

	data := bucket.Get([]byte(id))
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}

	// Десериализуем
	record := &models.Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return record, nil
}

func queryRecords(tx *bbolt.Tx, pred storage.Predicate) ([]*models.Record, error) {
	root := tx.Bucket(bucketRecords)
	records := []*models.Record{}

	scan := func(bucket *bbolt.Bucket) error {
		return bucket.ForEach(func(k, v []byte) error {
			var record models.Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record %s: %w", k, err)
			}
			if pred.Matches(&record) {
				records = append(records, &record)
			}
			return nil
		})
	}

	if pred.Kind != "" {
		if bucket := root.Bucket([]byte(pred.Kind)); bucket != nil {
			if err := scan(bucket); err != nil {
				return nil, err
			}
		}
	} else {
		err := root.ForEachBucket(func(name []byte) error {
			return scan(root.Bucket(name))
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

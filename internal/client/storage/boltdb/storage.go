package boltdb

import (
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketRecords    = []byte("records")    // nested bucket per record kind
	bucketMetadata   = []byte("metadata")   // scope -> last sync time
	bucketTombstones = []byte("tombstones") // kind/id -> remote delete time
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db *bbolt.DB

	// writeMu держит коммит и рассылку уведомлений вместе,
	// чтобы подписчики видели снимки в порядке коммитов
	writeMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[uint64]*subscription
	nextSub uint64
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{
		db:   db,
		subs: make(map[uint64]*subscription),
	}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes all subscriptions and the database connection
func (s *Storage) Close() error {
	s.subsMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRecords, bucketMetadata, bucketTombstones} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

package boltdb

import (
	"context"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/models"
)

// subscription is a live query over the store.
// The channel has capacity one and always holds the latest unread snapshot.
type subscription struct {
	store *Storage
	stop  func() bool
	pred  storage.Predicate
	ch    chan []*models.Record
	id    uint64
	mu    sync.Mutex
	done  bool
}

// Observe subscribes to pred and emits the current result set immediately
func (s *Storage) Observe(ctx context.Context, pred storage.Predicate) (storage.Subscription, error) {
	// Регистрация и первый снимок под writeMu: ни один коммит не проскочит между ними
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var initial []*models.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		initial, err = queryRecords(tx, pred)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.subsMu.Lock()
	s.nextSub++
	sub := &subscription{
		store: s,
		pred:  pred,
		ch:    make(chan []*models.Record, 1),
		id:    s.nextSub,
	}
	s.subs[sub.id] = sub
	s.subsMu.Unlock()

	sub.deliver(initial)

	stop := context.AfterFunc(ctx, sub.Close)
	sub.mu.Lock()
	sub.stop = stop
	sub.mu.Unlock()

	return sub, nil
}

func (sub *subscription) C() <-chan []*models.Record {
	return sub.ch
}

// Close unregisters the subscription and closes its channel. Safe to call twice.
func (sub *subscription) Close() {
	sub.mu.Lock()
	if sub.done {
		sub.mu.Unlock()
		return
	}
	sub.done = true
	close(sub.ch)
	stop := sub.stop
	sub.mu.Unlock()

	if stop != nil {
		stop()
	}

	sub.store.subsMu.Lock()
	delete(sub.store.subs, sub.id)
	sub.store.subsMu.Unlock()
}

// deliver replaces the unread snapshot, if any, with records
func (sub *subscription) deliver(records []*models.Record) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.done {
		return
	}
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- records
}

// notify re-runs the queries of subscriptions affected by the touched kinds.
// Caller holds writeMu.
func (s *Storage) notify(touched map[string]struct{}) {
	if len(touched) == 0 {
		return
	}

	s.subsMu.Lock()
	affected := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		for kind := range touched {
			if sub.pred.Affects(kind) {
				affected = append(affected, sub)
				break
			}
		}
	}
	s.subsMu.Unlock()

	for _, sub := range affected {
		var records []*models.Record
		err := s.db.View(func(tx *bbolt.Tx) error {
			var err error
			records, err = queryRecords(tx, sub.pred)
			return err
		})
		if err != nil {
			// Подписчик получит актуальный снимок при следующем коммите
			continue
		}
		sub.deliver(records)
	}
}

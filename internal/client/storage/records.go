package storage

import (
	"context"
	"time"

	"github.com/iudanet/podsync/internal/models"
)

//go:generate moq -out localstore_mock.go . LocalStore

// LocalStore is the embedded, transactional, reactive store. It is the only
// component allowed to mutate persisted records.
type LocalStore interface {
	// Write executes fn in a single serialized read-write transaction.
	// All subscriptions whose predicate may be affected are notified
	// before Write returns. If fn returns an error nothing is committed.
	Write(ctx context.Context, fn func(tx Tx) error) error

	// Find returns a record by kind and id, including local tombstones.
	// Returns ErrRecordNotFound if the record doesn't exist.
	Find(ctx context.Context, kind, id string) (*models.Record, error)

	// Query returns records matching the predicate.
	Query(ctx context.Context, pred Predicate) ([]*models.Record, error)

	// Observe subscribes to the result set of pred. The current value is
	// emitted immediately, then again after every committed transaction that
	// touched the predicate's kind. The subscription ends when ctx is done or
	// Close is called.
	Observe(ctx context.Context, pred Predicate) (Subscription, error)
}

// Tx is the view of the store inside Write.
type Tx interface {
	// Get returns a record or ErrRecordNotFound.
	Get(kind, id string) (*models.Record, error)
	// Put inserts or replaces a record.
	Put(record *models.Record) error
	// Delete physically removes a record. Missing records are ignored.
	Delete(kind, id string) error
	// Query returns records matching pred as seen by this transaction.
	Query(pred Predicate) ([]*models.Record, error)
	// SetDeleteWatermark remembers that kind/id was deleted remotely at at.
	SetDeleteWatermark(kind, id string, at time.Time) error
	// DeleteWatermark returns the remote delete time of kind/id, if any.
	DeleteWatermark(kind, id string) (time.Time, bool, error)
	// ClearDeleteWatermark forgets the delete watermark of kind/id.
	ClearDeleteWatermark(kind, id string) error
}

// Subscription is a live query.
type Subscription interface {
	// C emits full result sets. Only the latest unread result is kept.
	C() <-chan []*models.Record
	// Close stops the subscription and closes C.
	Close()
}

// Predicate selects records. Zero-valued fields match everything.
type Predicate struct {
	// Match is an optional extra filter evaluated after the indexed fields.
	Match func(r *models.Record) bool
	// NeedsSync filters on the needs-sync flag when set.
	NeedsSync *bool
	Kind      string
	OwnerID   string
	EntityID  string
	// IncludeDeleted returns local tombstones too.
	IncludeDeleted bool
}

// Matches reports whether r satisfies the predicate.
func (p Predicate) Matches(r *models.Record) bool {
	if p.Kind != "" && r.Kind != p.Kind {
		return false
	}
	if p.OwnerID != "" && r.OwnerID != p.OwnerID {
		return false
	}
	if p.EntityID != "" && r.EntityID != p.EntityID {
		return false
	}
	if !p.IncludeDeleted && r.Deleted {
		return false
	}
	if p.NeedsSync != nil && r.NeedsSync != *p.NeedsSync {
		return false
	}
	if p.Match != nil && !p.Match(r) {
		return false
	}
	return true
}

// Affects reports whether a change to kind may change the predicate's result.
func (p Predicate) Affects(kind string) bool {
	return p.Kind == "" || p.Kind == kind
}

// Pending is a predicate helper for records that must be pushed.
func Pending(kind string) Predicate {
	needsSync := true
	return Predicate{Kind: kind, NeedsSync: &needsSync, IncludeDeleted: true}
}

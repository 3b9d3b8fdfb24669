package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/merge"
	"github.com/iudanet/podsync/internal/models"
)

// ErrDisposed is returned by operations on a disposed coordinator
var ErrDisposed = errors.New("sync coordinator is disposed")

// Options tunes the coordinator and its synchronizers
type Options struct {
	Merge            merge.Options
	Debounce         time.Duration
	TTL              time.Duration
	NetworkTimeout   time.Duration
	FlushConcurrency int
}

// DefaultOptions returns the coordinator defaults
func DefaultOptions() Options {
	return Options{
		Merge:            merge.DefaultOptions(),
		Debounce:         30 * time.Second,
		TTL:              5 * time.Minute,
		NetworkTimeout:   15 * time.Second,
		FlushConcurrency: 8,
	}
}

// Deps are the coordinator's collaborators. Feed and Enrichers are optional.
type Deps struct {
	Store     storage.LocalStore
	Meta      storage.MetadataStorage
	Remote    Remote
	Feed      Feed
	Clock     clock.Clock
	Policies  models.Policies
	Enrichers map[string]Enricher
}

// CleanupResult contains duplicate cleanup results
type CleanupResult struct {
	Groups  int // количество групп с дубликатами
	Removed int // удалено дубликатов
}

// Coordinator is the single entry point of the sync engine for one owner.
// It is safe for concurrent use.
type Coordinator struct {
	store      storage.LocalStore
	policies   models.Policies
	clock      clock.Clock
	logger     *slog.Logger
	pusher     *Pusher
	puller     *Puller
	aggregator *Aggregator
	reconciler *Reconciler
	ownerID    string
	opts       Options
	mu         stdsync.RWMutex
	disposed   bool
}

// NewCoordinator wires the local store, the synchronizers and the change feed for ownerID
func NewCoordinator(deps Deps, ownerID string, opts Options, logger *slog.Logger) *Coordinator {
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}

	c := &Coordinator{
		store:    deps.Store,
		policies: deps.Policies,
		clock:    clk,
		logger:   logger,
		ownerID:  ownerID,
		opts:     opts,
	}

	c.pusher = NewPusher(deps.Store, deps.Remote, deps.Policies, clk, opts.NetworkTimeout, logger)
	c.aggregator = NewAggregator(c.pusher, clk, opts.Debounce, opts.FlushConcurrency, logger)
	c.puller = NewPuller(deps.Store, deps.Meta, deps.Remote, deps.Policies, clk, opts.Merge, opts.TTL, opts.NetworkTimeout, logger)
	for kind, e := range deps.Enrichers {
		c.puller.WithEnricher(kind, e)
	}

	if deps.Feed != nil {
		c.reconciler = NewReconciler(deps.Store, deps.Remote, deps.Feed, deps.Policies, clk, opts.Merge, opts.NetworkTimeout,
			c.catchUp, logger)
	}

	return c
}

// OwnerID returns the owner new records are created for
func (c *Coordinator) OwnerID() string {
	return c.ownerID
}

// Start subscribes to the change feed of topics. No-op without a feed.
func (c *Coordinator) Start(ctx context.Context, topics ...string) error {
	if err := c.checkDisposed(); err != nil {
		return err
	}
	if c.reconciler == nil {
		return nil
	}
	return c.reconciler.Start(ctx, topics...)
}

// catchUp runs a forced pull of topic after the feed reconnects
func (c *Coordinator) catchUp(ctx context.Context, topic string) {
	if _, err := c.puller.Sync(ctx, Scope{Kind: topic}, true); err != nil {
		c.logger.Warn("Catch-up pull after reconnect failed", "topic", topic, "error", err)
	}
}

// Observe subscribes to the local result set of pred. Never touches the network.
func (c *Coordinator) Observe(ctx context.Context, pred storage.Predicate) (storage.Subscription, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}
	return c.store.Observe(ctx, pred)
}

// Find returns one local record
func (c *Coordinator) Find(ctx context.Context, kind, id string) (*models.Record, error) {
	return c.store.Find(ctx, kind, id)
}

// Query returns local records matching pred
func (c *Coordinator) Query(ctx context.Context, pred storage.Predicate) ([]*models.Record, error) {
	return c.store.Query(ctx, pred)
}

// Write applies fields on top of record kind/id and queues it for push.
// An empty id creates a new record. Fields not mentioned keep their values,
// sticky fields never go back to false. A write rejected by the domain guard
// or by the zero guard does not apply and the previous state is returned
// (nil if the record did not exist).
func (c *Coordinator) Write(ctx context.Context, kind, id, entityID string, fields models.Fields) (*models.Record, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}

	policy, err := c.policies.Get(kind)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.New().String()
	}

	var (
		result    *models.Record
		changed   bool
		milestone bool
	)
	err = c.store.Write(ctx, func(tx storage.Tx) error {
		now := c.clock.Now()

		existing, err := tx.Get(kind, id)
		if errors.Is(err, storage.ErrRecordNotFound) || (err == nil && existing.Deleted) {
			existing = nil
		} else if err != nil {
			return err
		}

		merged := models.Fields{}
		if existing != nil {
			merged = existing.Fields.Clone()
			if merged == nil {
				merged = models.Fields{}
			}
		}
		for name, value := range fields {
			if policy.IsSticky(name) {
				continue
			}
			merged.Set(name, value)
		}
		if existing == nil {
			for _, name := range policy.Sticky {
				merged.Set(name, fields.Bool(name))
				milestone = milestone || fields.Bool(name)
			}
		} else {
			raised := merge.MergeSticky(existing.Fields, fields, policy)
			for name, value := range raised {
				merged.Set(name, value)
			}
			milestone = len(raised) > 0
		}

		if err := policy.Check(merged); err != nil {
			c.logger.Warn("Local write rejected by domain guard", "kind", kind, "record_id", id, "error", err)
			result = existing
			return nil
		}
		if guarded, field := merge.ZeroGuardHolds(existing, fields, policy, c.opts.Merge, now); guarded {
			c.logger.Debug("Local write ignored by zero guard", "record_id", id, "field", field)
			result = existing
			return nil
		}
		if existing != nil && reflect.DeepEqual(existing.Fields, merged) &&
			(entityID == "" || entityID == existing.EntityID) {
			result = existing
			return nil
		}

		record := existing
		if record == nil {
			// Надгробие с тем же id заменяется новой записью
			record = &models.Record{ID: id, Kind: kind, OwnerID: c.ownerID}
			if prev, err := tx.Get(kind, id); err == nil {
				record.CreatedAt = prev.CreatedAt
				record.SyncedAt = prev.SyncedAt
			}
		}
		if entityID != "" {
			record.EntityID = entityID
		}
		record.Fields = merged
		record.Deleted = false
		record.Touch(now)

		if err := tx.Put(record); err != nil {
			return err
		}
		result = record
		changed = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}

	if changed {
		c.enqueue(result)
		if milestone {
			// Завершение эпизода отправляется без ожидания debounce
			c.aggregator.Trigger()
		}
	}
	return result.Clone(), nil
}

// Delete removes a record locally and queues the delete for the remote.
func (c *Coordinator) Delete(ctx context.Context, kind, id string) error {
	if err := c.checkDisposed(); err != nil {
		return err
	}

	var tombstone *models.Record
	err := c.store.Write(ctx, func(tx storage.Tx) error {
		existing, err := tx.Get(kind, id)
		if err != nil {
			return err
		}
		if existing.Deleted {
			return nil
		}
		existing.Deleted = true
		existing.Touch(c.clock.Now())
		tombstone = existing
		return tx.Put(existing)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}

	if tombstone != nil {
		c.enqueue(tombstone)
	}
	return nil
}

func (c *Coordinator) enqueue(r *models.Record) {
	c.aggregator.Record(models.PendingWrite{
		Key:      r.Key(),
		RecordID: r.ID,
		Kind:     r.Kind,
		Fields:   r.Fields.Clone(),
		At:       r.UpdatedAt,
	})
}

// Pull reconciles a remote scope into the local store, honoring the TTL unless force is set.
func (c *Coordinator) Pull(ctx context.Context, scope Scope, force bool) (*PullResult, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}
	return c.puller.Sync(ctx, scope, force)
}

// FlushNow pushes every pending write immediately (pause, backgrounding, milestone).
func (c *Coordinator) FlushNow(ctx context.Context) (*FlushResult, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}
	return c.aggregator.Flush(ctx), nil
}

// Recover pushes every record still marked needs_sync, e.g. after a crash
// lost the in-memory pending table.
func (c *Coordinator) Recover(ctx context.Context) (*FlushResult, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}

	records, err := c.store.Query(ctx, storage.Pending(""))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending records: %w", err)
	}

	c.logger.Info("Recovering unsynced records", "count", len(records))
	for _, r := range records {
		c.enqueue(r)
	}
	return c.aggregator.Flush(ctx), nil
}

// PendingCount returns the number of records waiting to be pushed
func (c *Coordinator) PendingCount(ctx context.Context) (int, error) {
	records, err := c.store.Query(ctx, storage.Pending(""))
	if err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	return len(records), nil
}

// CleanupDuplicates keeps one record per (owner, entity) for kinds that must be
// unique. The survivor has the greatest monotonic value; sticky fields of the
// removed duplicates are OR-ed into it. Removed records are queued for remote delete.
func (c *Coordinator) CleanupDuplicates(ctx context.Context) (*CleanupResult, error) {
	if err := c.checkDisposed(); err != nil {
		return nil, err
	}

	kinds := make([]string, 0, len(c.policies))
	for kind, policy := range c.policies {
		if policy.Unique {
			kinds = append(kinds, kind)
		}
	}
	sort.Strings(kinds)

	result := &CleanupResult{}
	var touched []*models.Record

	err := c.store.Write(ctx, func(tx storage.Tx) error {
		now := c.clock.Now()
		for _, kind := range kinds {
			policy := c.policies[kind]

			records, err := tx.Query(storage.Predicate{Kind: kind})
			if err != nil {
				return err
			}

			groups := make(map[string][]*models.Record)
			var order []string
			for _, r := range records {
				if r.EntityID == "" {
					continue
				}
				key := r.CompositeKey()
				if _, ok := groups[key]; !ok {
					order = append(order, key)
				}
				groups[key] = append(groups[key], r)
			}

			for _, key := range order {
				group := groups[key]
				if len(group) < 2 {
					continue
				}
				result.Groups++

				sort.SliceStable(group, func(i, j int) bool {
					return outranks(group[i], group[j], policy)
				})
				survivor := group[0]

				raised := models.Fields{}
				for _, dup := range group[1:] {
					for name, value := range merge.MergeSticky(survivor.Fields, dup.Fields, policy) {
						raised[name] = value
					}

					dup.Deleted = true
					dup.Touch(now)
					if err := tx.Put(dup); err != nil {
						return err
					}
					touched = append(touched, dup)
					result.Removed++
				}

				if len(raised) > 0 {
					if survivor.Fields == nil {
						survivor.Fields = models.Fields{}
					}
					for name, value := range raised {
						survivor.Fields.Set(name, value)
					}
					survivor.Touch(now)
					if err := tx.Put(survivor); err != nil {
						return err
					}
					touched = append(touched, survivor)
				}

				c.logger.Info("Removed duplicate records",
					"kind", kind,
					"key", key,
					"kept", survivor.ID,
					"removed", len(group)-1)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clean up duplicates: %w", err)
	}

	for _, r := range touched {
		c.enqueue(r)
	}
	return result, nil
}

// outranks reports whether a should survive over b: greater monotonic value,
// then more sticky flags set, then the later update.
func outranks(a, b *models.Record, policy models.Policy) bool {
	if policy.Monotonic != "" {
		av, bv := a.Fields.Float(policy.Monotonic), b.Fields.Float(policy.Monotonic)
		if av != bv {
			return av > bv
		}
	}
	as, bs := stickyCount(a, policy), stickyCount(b, policy)
	if as != bs {
		return as > bs
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}

func stickyCount(r *models.Record, policy models.Policy) int {
	n := 0
	for _, name := range policy.Sticky {
		if r.Fields.Bool(name) {
			n++
		}
	}
	return n
}

// Dispose tears down the change-feed subscription and the debounce timer.
// Unpushed writes stay marked needs_sync for Recover.
func (c *Coordinator) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.mu.Unlock()

	if c.reconciler != nil {
		c.reconciler.Close()
	}
	c.aggregator.Close()
	c.logger.Info("Sync coordinator disposed", "owner_id", c.ownerID)
}

func (c *Coordinator) checkDisposed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.disposed {
		return ErrDisposed
	}
	return nil
}

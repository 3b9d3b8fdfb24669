package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/models"
)

// PushOutcome describes what a push did
type PushOutcome int

const (
	// OutcomeSkipped nothing to push: record is gone or already synced
	OutcomeSkipped PushOutcome = iota
	// OutcomePushed record created or updated remotely
	OutcomePushed
	// OutcomeRecovered create hit a uniqueness violation and was retried as update
	OutcomeRecovered
	// OutcomeDeleted local delete propagated and the tombstone removed
	OutcomeDeleted
)

func (o PushOutcome) String() string {
	switch o {
	case OutcomePushed:
		return "pushed"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeDeleted:
		return "deleted"
	default:
		return "skipped"
	}
}

// Pusher makes one local record authoritative-consistent with the remote store
type Pusher struct {
	store    storage.LocalStore
	remote   Remote
	policies models.Policies
	clock    clock.Clock
	logger   *slog.Logger
	timeout  time.Duration
}

// NewPusher creates a push synchronizer. timeout bounds every remote call.
func NewPusher(store storage.LocalStore, remote Remote, policies models.Policies, clk clock.Clock, timeout time.Duration, logger *slog.Logger) *Pusher {
	return &Pusher{
		store:    store,
		remote:   remote,
		policies: policies,
		clock:    clk,
		logger:   logger,
		timeout:  timeout,
	}
}

// PushPending pushes the current stored state of a pending write's record.
// The pending payload only identifies the record; the store holds the freshest value.
func (p *Pusher) PushPending(ctx context.Context, w models.PendingWrite) (PushOutcome, error) {
	record, err := p.store.Find(ctx, w.Kind, w.RecordID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			// Запись удалена после постановки в очередь
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, fmt.Errorf("failed to load record %s: %w", w.RecordID, err)
	}
	if !record.NeedsSync {
		return OutcomeSkipped, nil
	}
	return p.Push(ctx, record)
}

// Push sends record to the remote authority keyed by its id.
// Create that collides with an existing id is retried as update, update of a
// missing record is retried as create. On success needsSync is cleared unless
// the record changed locally while the push was in flight.
func (p *Pusher) Push(ctx context.Context, record *models.Record) (PushOutcome, error) {
	if record.Deleted {
		return p.pushDelete(ctx, record)
	}

	policy, err := p.policies.Get(record.Kind)
	if err != nil {
		return OutcomeSkipped, err
	}

	payload := record.Clone()
	payload.Fields = policy.Payload(record.Fields)

	outcome := OutcomePushed
	if !record.IsSynced() {
		err = p.insert(ctx, payload)
		if errors.Is(err, api.ErrConflict) {
			p.logger.Debug("Insert collided with existing record, retrying as update", "record_id", record.ID)
			outcome = OutcomeRecovered
			err = p.update(ctx, payload)
		}
	} else {
		err = p.update(ctx, payload)
		if errors.Is(err, api.ErrNotFound) {
			p.logger.Debug("Update target missing, retrying as insert", "record_id", record.ID)
			err = p.insert(ctx, payload)
			if errors.Is(err, api.ErrConflict) {
				outcome = OutcomeRecovered
				err = p.update(ctx, payload)
			}
		}
	}
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("push %s %s: %w", record.Kind, record.ID, err)
	}

	if err := p.confirm(ctx, record); err != nil {
		return OutcomeSkipped, err
	}
	return outcome, nil
}

func (p *Pusher) insert(ctx context.Context, r *models.Record) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.remote.Insert(ctx, r)
	return err
}

func (p *Pusher) update(ctx context.Context, r *models.Record) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.remote.Update(ctx, r)
	return err
}

// confirm clears needsSync if the stored record is still the pushed version
func (p *Pusher) confirm(ctx context.Context, pushed *models.Record) error {
	err := p.store.Write(ctx, func(tx storage.Tx) error {
		current, err := tx.Get(pushed.Kind, pushed.ID)
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if current.Deleted || !current.UpdatedAt.Equal(pushed.UpdatedAt) {
			// Локальная правка во время push: флаг остаётся, уйдёт следующим flush
			p.logger.Debug("Record changed during push, keeping needs_sync", "record_id", pushed.ID)
			if current.SyncedAt == nil {
				now := p.clock.Now()
				current.SyncedAt = &now
				return tx.Put(current)
			}
			return nil
		}

		current.MarkSynced(p.clock.Now())
		return tx.Put(current)
	})
	if err != nil {
		return fmt.Errorf("failed to confirm push of %s: %w", pushed.ID, err)
	}
	return nil
}

func (p *Pusher) pushDelete(ctx context.Context, record *models.Record) (PushOutcome, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	err := p.remote.Delete(callCtx, record.Kind, record.ID)
	cancel()
	// Уже удалена на сервере: цель достигнута
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return OutcomeSkipped, fmt.Errorf("delete %s %s: %w", record.Kind, record.ID, err)
	}

	err = p.store.Write(ctx, func(tx storage.Tx) error {
		current, err := tx.Get(record.Kind, record.ID)
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// Запись воскресла локальной правкой: надгробие не трогаем
		if !current.Deleted || !current.UpdatedAt.Equal(record.UpdatedAt) {
			return nil
		}
		return tx.Delete(record.Kind, record.ID)
	})
	if err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to remove tombstone %s: %w", record.ID, err)
	}
	return OutcomeDeleted, nil
}

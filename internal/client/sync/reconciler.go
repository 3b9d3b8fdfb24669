package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/feed"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/merge"
	"github.com/iudanet/podsync/internal/models"
)

// ErrAlreadyStarted is returned by Start on a running reconciler
var ErrAlreadyStarted = errors.New("reconciler already started")

// ApplyResult describes what happened to one change event
type ApplyResult int

const (
	// ApplyIgnored event is stale, duplicate or rejected by the merge rule
	ApplyIgnored ApplyResult = iota
	// ApplyMerged record created or changed locally
	ApplyMerged
	// ApplyDeleted record removed locally
	ApplyDeleted
)

// Reconciler applies change-feed events to the local store as they arrive
type Reconciler struct {
	store       storage.LocalStore
	remote      Remote
	feed        Feed
	policies    models.Policies
	clock       clock.Clock
	logger      *slog.Logger
	onReconnect func(ctx context.Context, topic string)
	lastApplied map[string]time.Time // kind/id -> updated_at последнего применённого события
	cancel      context.CancelFunc
	wg          stdsync.WaitGroup
	mergeOpts   merge.Options
	timeout     time.Duration
	mu          stdsync.Mutex
	started     bool
}

// NewReconciler creates a change-feed reconciler.
// onReconnect is called after the feed reconnects, to catch up on missed events.
func NewReconciler(store storage.LocalStore, remote Remote, changes Feed, policies models.Policies, clk clock.Clock,
	mergeOpts merge.Options, timeout time.Duration, onReconnect func(ctx context.Context, topic string), logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:       store,
		remote:      remote,
		feed:        changes,
		policies:    policies,
		clock:       clk,
		logger:      logger,
		onReconnect: onReconnect,
		lastApplied: make(map[string]time.Time),
		mergeOpts:   mergeOpts,
		timeout:     timeout,
	}
}

// Start subscribes to every topic. Events of one topic are applied in delivery order.
func (r *Reconciler) Start(ctx context.Context, topics ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrAlreadyStarted
	}
	r.started = true

	ctx, r.cancel = context.WithCancel(ctx)
	for _, topic := range topics {
		messages := r.feed.Subscribe(ctx, topic)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.consume(ctx, topic, messages)
		}()
	}

	r.logger.Info("Change feed reconciler started", "topics", topics)
	return nil
}

func (r *Reconciler) consume(ctx context.Context, topic string, messages <-chan feed.Message) {
	for msg := range messages {
		if msg.Reconnected {
			if r.onReconnect != nil {
				r.onReconnect(ctx, topic)
			}
			continue
		}

		ev := msg.Event
		if ev.Topic == "" {
			ev.Topic = topic
		}
		if _, err := r.Apply(ctx, ev); err != nil {
			// Ошибка одного события не останавливает ленту
			r.logger.Warn("Failed to apply change event",
				"topic", topic,
				"event_id", ev.ID,
				"record_id", ev.RecordID,
				"error", err)
		}
	}
}

// Close unsubscribes from every topic and waits for in-flight events.
func (r *Reconciler) Close() {
	r.mu.Lock()
	cancel := r.cancel
	started := r.started
	r.started = false
	r.cancel = nil
	r.mu.Unlock()

	if !started || cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.logger.Info("Change feed reconciler stopped")
}

// Apply merges one change event into the local store.
func (r *Reconciler) Apply(ctx context.Context, ev models.ChangeEvent) (ApplyResult, error) {
	policy, err := r.policies.Get(ev.Topic)
	if err != nil {
		return ApplyIgnored, err
	}

	at := ev.At
	if at.IsZero() && ev.Record != nil {
		at = ev.Record.UpdatedAt
	}
	key := ev.Topic + "/" + ev.RecordID

	// Время удаления ставит сервер, а время правки клиент, поэтому они несравнимы
	if ev.Kind == models.EventDelete {
		return r.applyDelete(ctx, ev, key, at)
	}

	// Идемпотентность по времени: доставка не обязана сохранять порядок
	if r.seen(key, at) {
		r.logger.Debug("Ignoring stale change event", "event_id", ev.ID, "record_id", ev.RecordID, "at", at)
		return ApplyIgnored, nil
	}

	incoming := ev.Record
	if incoming == nil {
		incoming, err = r.fetch(ctx, ev)
		if errors.Is(err, api.ErrNotFound) {
			// Запись уже удалена, событие удаления придёт следом
			return ApplyIgnored, nil
		}
		if err != nil {
			return ApplyIgnored, err
		}
	}
	if incoming.Kind == "" {
		incoming.Kind = ev.Topic
	}

	var action merge.Action
	err = r.store.Write(ctx, func(tx storage.Tx) error {
		var err error
		action, err = applyRemote(tx, incoming, policy, r.mergeOpts, r.clock.Now(), ev.Kind == models.EventInsert, r.logger)
		return err
	})
	if err != nil {
		return ApplyIgnored, fmt.Errorf("failed to apply event %s: %w", ev.ID, err)
	}

	r.markApplied(key, at)
	if action == merge.ActionSkip {
		return ApplyIgnored, nil
	}
	return ApplyMerged, nil
}

func (r *Reconciler) applyDelete(ctx context.Context, ev models.ChangeEvent, key string, at time.Time) (ApplyResult, error) {
	if at.IsZero() {
		at = r.clock.Now()
	}

	// Водяной знак не ниже последней применённой правки
	r.mu.Lock()
	if last, ok := r.lastApplied[key]; ok && last.After(at) {
		at = last
	}
	r.mu.Unlock()

	// Удаление терминально: без сравнения версий
	err := r.store.Write(ctx, func(tx storage.Tx) error {
		if err := tx.Delete(ev.Topic, ev.RecordID); err != nil {
			return err
		}
		prev, deleted, err := tx.DeleteWatermark(ev.Topic, ev.RecordID)
		if err != nil {
			return err
		}
		if deleted && prev.After(at) {
			at = prev
		}
		return tx.SetDeleteWatermark(ev.Topic, ev.RecordID, at)
	})
	if err != nil {
		return ApplyIgnored, fmt.Errorf("failed to apply delete %s: %w", ev.RecordID, err)
	}

	// Дальше идентификатор защищает сохранённый водяной знак
	r.forget(key)
	r.logger.Debug("Record deleted by change feed", "record_id", ev.RecordID)
	return ApplyDeleted, nil
}

func (r *Reconciler) fetch(ctx context.Context, ev models.ChangeEvent) (*models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.remote.Get(ctx, ev.Topic, ev.RecordID)
}

func (r *Reconciler) seen(key string, at time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, ok := r.lastApplied[key]
	return ok && !at.After(last)
}

func (r *Reconciler) markApplied(key string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.lastApplied[key]; !ok || at.After(last) {
		r.lastApplied[key] = at
	}
}

func (r *Reconciler) forget(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lastApplied, key)
}

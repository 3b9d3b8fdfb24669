package sync

import (
	"context"
	"errors"
	"log/slog"
	stdsync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/models"
)

// State is the aggregator's debounce state
type State int

const (
	// StateIdle нет ожидающих записей
	StateIdle State = iota
	// StatePending есть записи, таймер взведён до Deadline
	StatePending
	// StateFlushing идёт отправка снимка
	StateFlushing
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFlushing:
		return "flushing"
	default:
		return "idle"
	}
}

//go:generate moq -out pendingpusher_mock.go . PendingPusher

// PendingPusher pushes one pending write
type PendingPusher interface {
	PushPending(ctx context.Context, w models.PendingWrite) (PushOutcome, error)
}

// FlushResult contains flush operation results
type FlushResult struct {
	Errors    map[string]error // ошибки по ключу записи
	Pushed    int              // создано или обновлено на сервере
	Recovered int              // конфликт уникальности обработан как update
	Deleted   int              // удаления отправлены на сервер
	Skipped   int              // запись исчезла или уже синхронизирована
	Failed    int              // временный сбой, запись уйдёт в следующем цикле
	Rejected  int              // сервер отклонил запись, повтор без правки не поможет
}

// Aggregator coalesces local writes per logical key and pushes them after a
// quiet period or on an explicit flush.
type Aggregator struct {
	clock       clock.Clock
	pusher      PendingPusher
	logger      *slog.Logger
	pending     map[string]models.PendingWrite
	timer       clock.Timer
	deadline    time.Time
	ctx         context.Context
	cancel      context.CancelFunc
	debounce    time.Duration
	concurrency int
	flushing    int
	gen         uint64
	mu          stdsync.Mutex
}

// NewAggregator creates a pending write aggregator.
// concurrency limits simultaneous pushes within one flush.
func NewAggregator(pusher PendingPusher, clk clock.Clock, debounce time.Duration, concurrency int, logger *slog.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Aggregator{
		clock:       clk,
		pusher:      pusher,
		logger:      logger,
		pending:     make(map[string]models.PendingWrite),
		ctx:         ctx,
		cancel:      cancel,
		debounce:    debounce,
		concurrency: concurrency,
	}
}

// Record upserts the pending entry for w.Key and restarts the debounce timer.
func (a *Aggregator) Record(w models.PendingWrite) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Более новая запись заменяет старую на месте
	a.pending[w.Key] = w
	a.arm(a.debounce)
}

// Trigger schedules an immediate flush without blocking the caller.
func (a *Aggregator) Trigger() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.pending) == 0 {
		return
	}
	a.arm(0)
}

// arm restarts the timer. Caller holds mu.
func (a *Aggregator) arm(d time.Duration) {
	if a.ctx.Err() != nil {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.deadline = a.clock.Now().Add(d)
	a.timer = a.clock.AfterFunc(d, func() {
		a.mu.Lock()
		stale := gen != a.gen
		a.mu.Unlock()
		if stale {
			return
		}
		a.Flush(a.ctx)
	})
}

// State returns the current state and, when pending, the flush deadline.
func (a *Aggregator) State() (State, time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.flushing > 0:
		return StateFlushing, time.Time{}
	case len(a.pending) > 0:
		return StatePending, a.deadline
	default:
		return StateIdle, time.Time{}
	}
}

// Len returns the number of pending entries
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return len(a.pending)
}

// Flush snapshots and clears the pending table, then pushes every entry
// concurrently. One entry's failure does not affect the others and is not
// retried within the same flush.
func (a *Aggregator) Flush(ctx context.Context) *FlushResult {
	// Снимок и очистка до любого сетевого вызова
	a.mu.Lock()
	snapshot := make([]models.PendingWrite, 0, len(a.pending))
	for _, w := range a.pending {
		snapshot = append(snapshot, w)
	}
	a.pending = make(map[string]models.PendingWrite)
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
	a.deadline = time.Time{}
	a.flushing++
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.flushing--
		a.mu.Unlock()
	}()

	result := &FlushResult{Errors: make(map[string]error)}
	if len(snapshot) == 0 {
		return result
	}

	var resultMu stdsync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, w := range snapshot {
		g.Go(func() error {
			outcome, err := a.pusher.PushPending(gctx, w)

			resultMu.Lock()
			defer resultMu.Unlock()

			if err != nil {
				// needs_sync остаётся true в обоих случаях
				result.Errors[w.Key] = err
				if errors.Is(err, api.ErrPermanent) {
					result.Rejected++
					a.logger.Error("Pending write rejected by server",
						"record_id", w.RecordID,
						"kind", w.Kind,
						"error", err)
					return nil
				}
				result.Failed++
				a.logger.Warn("Failed to push pending write",
					"record_id", w.RecordID,
					"kind", w.Kind,
					"error", err)
				return nil
			}

			switch outcome {
			case OutcomePushed:
				result.Pushed++
			case OutcomeRecovered:
				result.Pushed++
				result.Recovered++
			case OutcomeDeleted:
				result.Deleted++
			default:
				result.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	a.logger.Info("Flush completed",
		"entries", len(snapshot),
		"pushed", result.Pushed,
		"recovered", result.Recovered,
		"deleted", result.Deleted,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"rejected", result.Rejected)

	return result
}

// Close stops the timer. Pending entries stay durable through needs_sync.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancel()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
}

package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/merge"
	"github.com/iudanet/podsync/internal/models"
)

// Scope identifies a remote collection: a kind, optionally narrowed to one entity
type Scope struct {
	Kind     string
	EntityID string
}

// Key returns the key under which the scope's lastSyncTime is stored
func (s Scope) Key() string {
	if s.EntityID == "" {
		return s.Kind
	}
	return s.Kind + ":" + s.EntityID
}

// PullResult contains pull operation results
type PullResult struct {
	EnrichErr   error // ошибка получения связанных данных, основной merge сохранён
	Fetched     int   // количество полученных с сервера записей
	Created     int   // созданы локально
	Overwritten int   // серверная версия новее
	Sticky      int   // поднято только sticky-поле
	Skipped     int   // локальная версия не старее, доменная защита или водяной знак удаления
	Fresh       bool  // TTL не истёк, сетевого вызова не было
}

// Merged returns the number of records that changed locally
func (r *PullResult) Merged() int {
	return r.Created + r.Overwritten + r.Sticky
}

// Puller reconciles remote collections into the local store on a TTL policy
type Puller struct {
	store     storage.LocalStore
	meta      storage.MetadataStorage
	remote    Remote
	policies  models.Policies
	enrichers map[string]Enricher
	clock     clock.Clock
	logger    *slog.Logger
	group     singleflight.Group
	mergeOpts merge.Options
	ttl       time.Duration
	timeout   time.Duration
}

// NewPuller creates a pull synchronizer
func NewPuller(store storage.LocalStore, meta storage.MetadataStorage, remote Remote, policies models.Policies,
	clk clock.Clock, mergeOpts merge.Options, ttl, timeout time.Duration, logger *slog.Logger) *Puller {
	return &Puller{
		store:     store,
		meta:      meta,
		remote:    remote,
		policies:  policies,
		enrichers: make(map[string]Enricher),
		clock:     clk,
		logger:    logger,
		mergeOpts: mergeOpts,
		ttl:       ttl,
		timeout:   timeout,
	}
}

// WithEnricher registers related-data enrichment for kind
func (p *Puller) WithEnricher(kind string, e Enricher) *Puller {
	p.enrichers[kind] = e
	return p
}

// Sync pulls scope unless it was pulled less than TTL ago. force skips the TTL check.
// Concurrent non-forced pulls of the same scope share one network round trip.
func (p *Puller) Sync(ctx context.Context, scope Scope, force bool) (*PullResult, error) {
	if force {
		return p.pull(ctx, scope)
	}

	v, err, _ := p.group.Do(scope.Key(), func() (any, error) {
		last, err := p.meta.GetLastSyncTime(ctx, scope.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to get last sync time: %w", err)
		}
		if !last.IsZero() && p.clock.Now().Sub(last) < p.ttl {
			p.logger.Debug("Pull skipped, cache is fresh", "scope", scope.Key(), "last_sync", last)
			return &PullResult{Fresh: true}, nil
		}
		return p.pull(ctx, scope)
	})
	if err != nil {
		return nil, err
	}
	return v.(*PullResult), nil
}

func (p *Puller) pull(ctx context.Context, scope Scope) (*PullResult, error) {
	policy, err := p.policies.Get(scope.Kind)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Starting pull", "scope", scope.Key())

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	records, err := p.remote.Fetch(fetchCtx, scope.Kind, api.FetchQuery{EntityID: scope.EntityID})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", scope.Key(), err)
	}

	result := &PullResult{Fetched: len(records)}

	// Весь снимок сливается одной транзакцией
	err = p.store.Write(ctx, func(tx storage.Tx) error {
		now := p.clock.Now()
		for _, incoming := range records {
			if incoming.Kind == "" {
				incoming.Kind = scope.Kind
			}
			action, err := applyRemote(tx, incoming, policy, p.mergeOpts, now, false, p.logger)
			if err != nil {
				return err
			}
			countAction(result, action)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to merge %s: %w", scope.Key(), err)
	}

	if enricher, ok := p.enrichers[scope.Kind]; ok && len(records) > 0 {
		if err := p.enrich(ctx, enricher, scope.Kind, records); err != nil {
			// Связанные данные не обязательны: основной merge уже применён
			result.EnrichErr = err
			p.logger.Warn("Failed to fetch related data", "scope", scope.Key(), "error", err)
		}
	}

	// Кэш помечается свежим только после полного успеха
	if err := p.meta.SaveLastSyncTime(ctx, scope.Key(), p.clock.Now()); err != nil {
		return nil, fmt.Errorf("failed to save last sync time: %w", err)
	}

	p.logger.Info("Pull completed",
		"scope", scope.Key(),
		"fetched", result.Fetched,
		"created", result.Created,
		"overwritten", result.Overwritten,
		"sticky", result.Sticky,
		"skipped", result.Skipped)

	return result, nil
}

func (p *Puller) enrich(ctx context.Context, enricher Enricher, kind string, records []*models.Record) error {
	enrichCtx, cancel := context.WithTimeout(ctx, p.timeout)
	related, err := enricher.Enrich(enrichCtx, records)
	cancel()
	if err != nil {
		return err
	}

	return p.store.Write(ctx, func(tx storage.Tx) error {
		for id, fields := range related {
			current, err := tx.Get(kind, id)
			if errors.Is(err, storage.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			// Производные поля не меняют updated_at и needs_sync
			if current.Fields == nil {
				current.Fields = models.Fields{}
			}
			for name, value := range fields {
				current.Fields.Set(name, value)
			}
			if err := tx.Put(current); err != nil {
				return err
			}
		}
		return nil
	})
}

func countAction(result *PullResult, action merge.Action) {
	switch action {
	case merge.ActionCreate:
		result.Created++
	case merge.ActionOverwrite:
		result.Overwritten++
	case merge.ActionSticky:
		result.Sticky++
	default:
		result.Skipped++
	}
}

// applyRemote merges one authoritative record into the store within tx.
// explicitInsert lets a feed Insert recreate a record deleted remotely earlier.
func applyRemote(tx storage.Tx, incoming *models.Record, policy models.Policy, opts merge.Options,
	now time.Time, explicitInsert bool, logger *slog.Logger) (merge.Action, error) {
	watermark, deleted, err := tx.DeleteWatermark(incoming.Kind, incoming.ID)
	if err != nil {
		return merge.ActionSkip, err
	}
	if deleted {
		if !explicitInsert && !incoming.UpdatedAt.After(watermark) {
			// Удалённая на сервере запись не воскресает от устаревшего снимка
			logger.Debug("Ignoring record deleted remotely", "record_id", incoming.ID, "deleted_at", watermark)
			return merge.ActionSkip, nil
		}
		if err := tx.ClearDeleteWatermark(incoming.Kind, incoming.ID); err != nil {
			return merge.ActionSkip, err
		}
	}

	local, err := tx.Get(incoming.Kind, incoming.ID)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		local = nil
	case err != nil:
		return merge.ActionSkip, err
	case local.Deleted:
		// Локальное удаление ещё не отправлено и побеждает
		return merge.ActionSkip, nil
	}

	decision := merge.Resolve(local, incoming, policy, opts, now)
	logger.Debug("Merge decision",
		"record_id", incoming.ID,
		"action", decision.Action.String(),
		"reason", decision.Reason)

	if decision.Result == nil {
		return decision.Action, nil
	}
	if err := tx.Put(decision.Result); err != nil {
		return merge.ActionSkip, err
	}
	return decision.Action, nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/client/sync"
	"github.com/iudanet/podsync/internal/models"
)

// syncKinds виды, которые синхронизируются командой pull без аргумента
var syncKinds = []string{models.KindProgress, models.KindComment, models.KindProfile}

func (c *Cli) runPull(ctx context.Context, kinds []string, force bool) error {
	c.io.Println("=== Pull ===")

	for _, kind := range kinds {
		result, err := c.engine.Pull(ctx, sync.Scope{Kind: kind}, force)
		if err != nil {
			return fmt.Errorf("pull %s failed: %w", kind, err)
		}

		if result.Fresh {
			c.io.Printf("%-9s up to date (use --force to refresh)\n", kind)
			continue
		}
		c.io.Printf("%-9s fetched %d, merged %d, skipped %d\n", kind, result.Fetched, result.Merged(), result.Skipped)
		if result.EnrichErr != nil {
			c.io.Printf("          related data unavailable: %v\n", result.EnrichErr)
		}
	}
	return nil
}

func (c *Cli) printFlush(title string, result *sync.FlushResult) {
	c.io.Printf("=== %s ===\n", title)
	c.io.Printf("Pushed:    %d\n", result.Pushed)
	if result.Recovered > 0 {
		c.io.Printf("Recovered: %d\n", result.Recovered)
	}
	if result.Deleted > 0 {
		c.io.Printf("Deleted:   %d\n", result.Deleted)
	}
	if result.Failed > 0 {
		c.io.Printf("Failed:    %d (will retry on next flush)\n", result.Failed)
		c.printFlushErrors(result.Errors, false)
	}
	if result.Rejected > 0 {
		c.io.Printf("Rejected:  %d (refused by server, edit or delete the record)\n", result.Rejected)
		c.printFlushErrors(result.Errors, true)
	}
}

// printFlushErrors печатает ошибки одного класса: отклонённые сервером или временные
func (c *Cli) printFlushErrors(errs map[string]error, rejected bool) {
	keys := make([]string, 0, len(errs))
	for key, err := range errs {
		if errors.Is(err, api.ErrPermanent) == rejected {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		c.io.Printf("  %s: %v\n", key, errs[key])
	}
}

func (c *Cli) runFlush(ctx context.Context) error {
	result, err := c.engine.FlushNow(ctx)
	if err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	c.printFlush("Flush", result)

	// Очередь в памяти живёт одну сессию; записи прошлых запусков
	// отправляет recover
	pending, err := c.engine.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending records: %w", err)
	}
	unsent := result.Failed + result.Rejected
	if pending > unsent {
		c.io.Printf("%d record(s) from earlier runs are still pending, run 'podsync recover' to push them\n", pending-unsent)
	}
	return nil
}

func (c *Cli) runRecover(ctx context.Context) error {
	result, err := c.engine.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recovery failed: %w", err)
	}
	c.printFlush("Recover", result)
	return nil
}

func (c *Cli) runDedupe(ctx context.Context) error {
	result, err := c.engine.CleanupDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("duplicate cleanup failed: %w", err)
	}

	if result.Removed == 0 {
		c.io.Println("No duplicates found.")
		return nil
	}
	c.io.Printf("Removed %d duplicate(s) in %d group(s)\n", result.Removed, result.Groups)
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	pending, err := c.engine.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending records: %w", err)
	}

	c.io.Println("=== Status ===")
	c.io.Printf("Owner:   %s\n", c.ownerID)
	c.io.Printf("Pending: %d\n", pending)

	needsSync := true
	for _, kind := range syncKinds {
		records, err := c.engine.Query(ctx, storage.Predicate{Kind: kind, NeedsSync: &needsSync})
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", kind, err)
		}
		if len(records) > 0 {
			c.io.Printf("  %-9s %d\n", kind, len(records))
		}
	}
	return nil
}

// runWatch печатает локальный набор записей kind при каждом изменении,
// пока ctx не отменён. Изменения приходят из ленты сервера.
func (c *Cli) runWatch(ctx context.Context, kind string) error {
	if err := c.engine.Start(ctx, kind); err != nil {
		return fmt.Errorf("failed to start change feed: %w", err)
	}

	sub, err := c.engine.Observe(ctx, storage.Predicate{Kind: kind})
	if err != nil {
		return fmt.Errorf("failed to observe %s: %w", kind, err)
	}
	defer sub.Close()

	c.io.Printf("Watching %s (Ctrl+C to stop)\n", kind)
	for {
		select {
		case <-ctx.Done():
			return nil
		case records, ok := <-sub.C():
			if !ok {
				return nil
			}
			c.io.Printf("--- %d record(s) ---\n", len(records))
			for i, r := range records {
				c.printRecord(i, r)
			}
		}
	}
}

package sync

import (
	"context"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/feed"
	"github.com/iudanet/podsync/internal/models"
)

//go:generate moq -out remote_mock.go . Remote

// Remote is the remote authority's data API as seen by the synchronizers.
// Errors are classified with the api.Err* sentinels.
type Remote interface {
	Fetch(ctx context.Context, kind string, q api.FetchQuery) ([]*models.Record, error)
	Get(ctx context.Context, kind, id string) (*models.Record, error)
	Insert(ctx context.Context, r *models.Record) (*models.Record, error)
	Update(ctx context.Context, r *models.Record) (*models.Record, error)
	Delete(ctx context.Context, kind, id string) error
}

//go:generate moq -out feed_mock.go . Feed

// Feed is a per-topic change stream. The channel is closed when ctx is done.
type Feed interface {
	Subscribe(ctx context.Context, topic string) <-chan feed.Message
}

//go:generate moq -out enricher_mock.go . Enricher

// Enricher fetches related data for pulled records of one kind.
// The result maps record id to derived fields merged into the local record.
type Enricher interface {
	Enrich(ctx context.Context, records []*models.Record) (map[string]models.Fields, error)
}

// ReactionsClient fetches reaction summaries of comments.
type ReactionsClient interface {
	Reactions(ctx context.Context, commentIDs []string) (map[string]map[string]int, error)
}

// ReactionsEnricher attaches reaction summaries to comments
type ReactionsEnricher struct {
	client ReactionsClient
}

// NewReactionsEnricher creates an enricher backed by client
func NewReactionsEnricher(client ReactionsClient) *ReactionsEnricher {
	return &ReactionsEnricher{client: client}
}

// Enrich implements Enricher
func (e *ReactionsEnricher) Enrich(ctx context.Context, records []*models.Record) (map[string]models.Fields, error) {
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	summaries, err := e.client.Reactions(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.Fields, len(ids))
	for _, id := range ids {
		reactions := make(map[string]any)
		// Отсутствие сводки означает ноль реакций
		for emoji, n := range summaries[id] {
			reactions[emoji] = float64(n)
		}
		out[id] = models.Fields{models.FieldReactions: reactions}
	}
	return out, nil
}

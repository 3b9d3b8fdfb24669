package storage

import (
	"context"
	"time"

	"github.com/iudanet/podsync/internal/models"
)

//go:generate moq -out records_mock.go . RecordStorage
//go:generate moq -out reactions_mock.go . ReactionStorage

// ListQuery filters a collection fetch. Zero values match everything.
type ListQuery struct {
	Since    time.Time // записи с updated_at строго после Since
	EntityID string
}

// RecordStorage defines interface for the authoritative record table.
// Records are scoped to their owner: another owner's record behaves as missing.
type RecordStorage interface {
	// InsertRecord creates a record.
	// Returns ErrRecordExists if a record with the same id exists (any owner).
	InsertRecord(ctx context.Context, r *models.Record) error

	// UpsertRecord creates or replaces a record of the owner.
	// Returns true if the record was created.
	// Returns ErrRecordExists if the id belongs to another owner.
	UpsertRecord(ctx context.Context, r *models.Record) (bool, error)

	// GetRecord retrieves a single record.
	// Returns ErrRecordNotFound if record doesn't exist.
	GetRecord(ctx context.Context, ownerID, kind, id string) (*models.Record, error)

	// ListRecords retrieves records of one kind ordered by updated_at ascending.
	// Returns empty slice if no records found
	ListRecords(ctx context.Context, ownerID, kind string, q ListQuery) ([]*models.Record, error)

	// DeleteRecord removes a record and its related data.
	// Returns ErrRecordNotFound if record doesn't exist
	DeleteRecord(ctx context.Context, ownerID, kind, id string) error
}

// ReactionStorage defines interface for comment reactions
type ReactionStorage interface {
	// AddReaction records emoji of ownerID on a comment. Repeated reactions are ignored.
	// Returns ErrRecordNotFound if the comment doesn't exist
	AddReaction(ctx context.Context, ownerID, commentID, emoji string) error

	// ReactionSummaries returns emoji counts per comment id.
	// Comments without reactions are present with an empty map.
	ReactionSummaries(ctx context.Context, commentIDs []string) (map[string]map[string]int, error)
}

package storage

import (
	"context"
	"time"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveLastSyncTime saves the time of the last fully successful pull of scope
	SaveLastSyncTime(ctx context.Context, scope string, at time.Time) error

	// GetLastSyncTime retrieves the time of the last successful pull of scope
	// Returns zero time if the scope was never pulled
	GetLastSyncTime(ctx context.Context, scope string) (time.Time, error)
}

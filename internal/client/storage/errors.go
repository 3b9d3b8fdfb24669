package storage

import "errors"

// Common client storage errors
var (
	// ErrRecordNotFound indicates that the record does not exist locally
	ErrRecordNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidRecord indicates that a record is missing its id or kind
	ErrInvalidRecord = errors.New("invalid record")
)

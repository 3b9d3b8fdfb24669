package storage

import "errors"

// Common storage errors
var (
	// ErrRecordNotFound indicates that record was not found in storage
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordExists indicates that a record with this id already exists
	ErrRecordExists = errors.New("record already exists")
)

package models

import "errors"

var (
	// ErrInvalidValue indicates that a payload violates a domain invariant
	// of its kind (for example a position far beyond the episode duration).
	ErrInvalidValue = errors.New("invalid value for record kind")

	// ErrUnknownKind indicates that no policy is registered for a kind.
	ErrUnknownKind = errors.New("unknown record kind")
)

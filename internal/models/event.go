package models

import "time"

// EventKind is the type of a change-feed event.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// ChangeEvent is one server-pushed change for a topic (record kind).
// Record is nil when the event is partial and the full record must be fetched.
type ChangeEvent struct {
	At       time.Time // At remote updated_at of the change
	Record   *Record
	ID       string // ID event id assigned by the authority (ULID)
	Topic    string
	RecordID string
	OwnerID  string
	Kind     EventKind
}

// IsPartial reports whether the event carries no record payload.
func (e ChangeEvent) IsPartial() bool {
	return e.Record == nil
}

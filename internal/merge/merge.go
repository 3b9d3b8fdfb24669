// Package merge implements the conflict-resolution rule shared by the pull
// synchronizer and the change-feed reconciler: last-writer-wins by UpdatedAt
// with ties favoring local, sticky fields OR-combined regardless of recency,
// per-kind domain guards and a zero-overwrite guard for fresh local values.
package merge

import (
	"time"

	"github.com/iudanet/podsync/internal/models"
)

// Action is what the caller must do with a Decision.
type Action int

const (
	// ActionSkip means the local store must not change.
	ActionSkip Action = iota
	// ActionCreate means the record did not exist locally and is created from remote.
	ActionCreate
	// ActionOverwrite means remote is strictly newer and replaces local non-sticky fields.
	ActionOverwrite
	// ActionSticky means local is at least as fresh but a sticky field was raised by remote.
	ActionSticky
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionOverwrite:
		return "overwrite"
	case ActionSticky:
		return "sticky"
	default:
		return "skip"
	}
}

// Options tunes the zero-overwrite guard.
type Options struct {
	// RecencyWindow is how long after a local write a zero incoming value is ignored.
	RecencyWindow time.Duration
	// ZeroGuardMin is the smallest local value considered "substantially nonzero".
	ZeroGuardMin float64
}

// DefaultOptions returns the guard defaults.
func DefaultOptions() Options {
	return Options{
		RecencyWindow: 3 * time.Second,
		ZeroGuardMin:  1,
	}
}

// Decision is the outcome of Resolve.
type Decision struct {
	// Result is the record to persist; nil for ActionSkip.
	Result *models.Record
	Reason string
	Action Action
}

// Resolve merges the remote record incoming into local (nil when absent).
// now stamps SyncedAt and evaluates the recency guard.
func Resolve(local, incoming *models.Record, policy models.Policy, opts Options, now time.Time) Decision {
	// Доменная проверка выполняется до сравнения времени
	if err := policy.Check(incoming.Fields); err != nil {
		return Decision{Action: ActionSkip, Reason: err.Error()}
	}

	if local == nil {
		result := incoming.Clone()
		result.Deleted = false
		result.MarkSynced(now)
		return Decision{Action: ActionCreate, Result: result, Reason: "absent locally"}
	}

	if guarded, field := ZeroGuardHolds(local, incoming.Fields, policy, opts, now); guarded {
		return stickyOnly(local, incoming, policy, "zero guard on "+field)
	}

	// При равенстве времени побеждает локальная запись
	if !incoming.UpdatedAt.After(local.UpdatedAt) {
		return stickyOnly(local, incoming, policy, "local is at least as fresh")
	}

	result := local.Clone()
	if result.Fields == nil {
		result.Fields = models.Fields{}
	}
	for name, value := range incoming.Fields {
		if policy.IsSticky(name) {
			continue
		}
		result.Fields.Set(name, value)
	}
	diverged := applySticky(result, local, incoming, policy)

	if incoming.EntityID != "" {
		result.EntityID = incoming.EntityID
	}
	if incoming.OwnerID != "" {
		result.OwnerID = incoming.OwnerID
	}
	result.UpdatedAt = incoming.UpdatedAt
	result.Deleted = false
	result.MarkSynced(now)
	// Если sticky-поле осталось true только локально, сервер его ещё не знает
	if diverged {
		result.NeedsSync = true
	}

	return Decision{Action: ActionOverwrite, Result: result, Reason: "remote is newer"}
}

// ZeroGuardHolds reports whether fields would zero a guarded field that a
// recent local write set to a substantial value. It also serves local writes
// racing with a periodic autosave.
func ZeroGuardHolds(local *models.Record, fields models.Fields, policy models.Policy, opts Options, now time.Time) (bool, string) {
	if local == nil || opts.RecencyWindow <= 0 {
		return false, ""
	}
	if now.Sub(local.UpdatedAt) >= opts.RecencyWindow {
		return false, ""
	}
	for _, name := range policy.ZeroGuarded {
		if !fields.Has(name) || fields.Float(name) != 0 {
			continue
		}
		if local.Fields.Float(name) >= opts.ZeroGuardMin {
			return true, name
		}
	}
	return false, ""
}

// MergeSticky returns existing OR incoming for every sticky field of the policy,
// as a set of fields that differ from existing. Empty when nothing changes.
func MergeSticky(existing, incoming models.Fields, policy models.Policy) models.Fields {
	changed := models.Fields{}
	for _, name := range policy.Sticky {
		if !existing.Bool(name) && incoming.Bool(name) {
			changed[name] = true
		}
	}
	return changed
}

func stickyOnly(local, incoming *models.Record, policy models.Policy, reason string) Decision {
	raised := MergeSticky(local.Fields, incoming.Fields, policy)
	if len(raised) == 0 {
		return Decision{Action: ActionSkip, Reason: reason}
	}

	result := local.Clone()
	if result.Fields == nil {
		result.Fields = models.Fields{}
	}
	for name, value := range raised {
		result.Fields.Set(name, value)
	}
	return Decision{Action: ActionSticky, Result: result, Reason: reason + ", sticky raised"}
}

// applySticky sets result's sticky fields to local OR incoming and reports
// whether the combined value differs from what the remote holds.
func applySticky(result, local, incoming *models.Record, policy models.Policy) bool {
	diverged := false
	for _, name := range policy.Sticky {
		value := local.Fields.Bool(name) || incoming.Fields.Bool(name)
		result.Fields.Set(name, value)
		if value != incoming.Fields.Bool(name) {
			diverged = true
		}
	}
	return diverged
}

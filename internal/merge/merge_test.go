package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/podsync/internal/models"
)

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func progressRecord(updatedAt time.Time, p models.Progress) *models.Record {
	return &models.Record{
		ID:        "rec-1",
		Kind:      models.KindProgress,
		OwnerID:   "owner-1",
		EntityID:  p.EpisodeID,
		CreatedAt: t0,
		UpdatedAt: updatedAt,
		Fields:    p.Fields(),
	}
}

func TestResolve_CreateWhenAbsent(t *testing.T) {
	policy := models.ProgressPolicy(5)
	now := t0.Add(time.Hour)
	incoming := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 30, Duration: 100})
	incoming.NeedsSync = true

	d := Resolve(nil, incoming, policy, DefaultOptions(), now)

	require.Equal(t, ActionCreate, d.Action)
	require.NotNil(t, d.Result)
	assert.False(t, d.Result.NeedsSync)
	require.NotNil(t, d.Result.SyncedAt)
	assert.Equal(t, now, *d.Result.SyncedAt)
	assert.Equal(t, 30.0, d.Result.Fields.Float(models.FieldPosition))
	// Входящая запись не должна мутировать
	assert.True(t, incoming.NeedsSync)
}

func TestResolve_StaleRemoteIsNoOp(t *testing.T) {
	policy := models.ProgressPolicy(5)
	local := progressRecord(t0.Add(time.Minute), models.Progress{EpisodeID: "ep-1", Position: 60, Duration: 100})
	local.NeedsSync = true
	incoming := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 10, Duration: 100})

	d := Resolve(local, incoming, policy, DefaultOptions(), t0.Add(time.Hour))

	assert.Equal(t, ActionSkip, d.Action)
	assert.Nil(t, d.Result)
}

func TestResolve_TieFavorsLocal(t *testing.T) {
	policy := models.ProgressPolicy(5)
	local := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 60, Duration: 100})
	incoming := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 80, Duration: 100})

	d := Resolve(local, incoming, policy, DefaultOptions(), t0.Add(time.Hour))

	assert.Equal(t, ActionSkip, d.Action)
}

func TestResolve_StickyOverrideFromOlderRemote(t *testing.T) {
	policy := models.ProgressPolicy(5)
	t1 := t0.Add(time.Minute)
	local := progressRecord(t1, models.Progress{EpisodeID: "ep-1", Position: 60, Duration: 100, Completed: false})
	local.NeedsSync = true
	incoming := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 99, Duration: 100, Completed: true})

	d := Resolve(local, incoming, policy, DefaultOptions(), t0.Add(time.Hour))

	require.Equal(t, ActionSticky, d.Action)
	require.NotNil(t, d.Result)
	assert.True(t, d.Result.Fields.Bool(models.FieldCompleted))
	assert.Equal(t, 60.0, d.Result.Fields.Float(models.FieldPosition), "non-sticky fields stay local")
	assert.Equal(t, t1, d.Result.UpdatedAt)
	assert.True(t, d.Result.NeedsSync, "pending local state is kept")
}

func TestResolve_NewerRemoteOverwritesButNeverRegressesSticky(t *testing.T) {
	policy := models.ProgressPolicy(5)
	local := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 100, Duration: 100, Completed: true})
	incoming := progressRecord(t0.Add(time.Minute), models.Progress{EpisodeID: "ep-1", Position: 20, Duration: 100, Completed: false})
	now := t0.Add(time.Hour)

	d := Resolve(local, incoming, policy, DefaultOptions(), now)

	require.Equal(t, ActionOverwrite, d.Action)
	assert.Equal(t, 20.0, d.Result.Fields.Float(models.FieldPosition))
	assert.True(t, d.Result.Fields.Bool(models.FieldCompleted))
	assert.Equal(t, incoming.UpdatedAt, d.Result.UpdatedAt)
	assert.Equal(t, t0, d.Result.CreatedAt)
	// Сервер не знает про completed=true, поэтому запись снова требует синхронизации
	assert.True(t, d.Result.NeedsSync)
	require.NotNil(t, d.Result.SyncedAt)
}

func TestResolve_NewerRemoteClearsNeedsSync(t *testing.T) {
	policy := models.CommentPolicy()
	local := &models.Record{
		ID: "c1", Kind: models.KindComment, UpdatedAt: t0, NeedsSync: true,
		Fields: models.Comment{EpisodeID: "ep-1", Text: "first"}.Fields(),
	}
	incoming := &models.Record{
		ID: "c1", Kind: models.KindComment, UpdatedAt: t0.Add(time.Second),
		Fields: models.Comment{EpisodeID: "ep-1", Text: "edited"}.Fields(),
	}

	d := Resolve(local, incoming, policy, DefaultOptions(), t0.Add(time.Hour))

	require.Equal(t, ActionOverwrite, d.Action)
	assert.Equal(t, "edited", d.Result.Fields.String(models.FieldText))
	assert.False(t, d.Result.NeedsSync)
}

func TestResolve_DomainGuardRejectsCorruptPosition(t *testing.T) {
	policy := models.ProgressPolicy(5)
	local := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 50, Duration: 100})
	incoming := progressRecord(t0.Add(time.Minute), models.Progress{EpisodeID: "ep-1", Position: 5000, Duration: 100, Completed: true})

	d := Resolve(local, incoming, policy, DefaultOptions(), t0.Add(time.Hour))

	assert.Equal(t, ActionSkip, d.Action)
	assert.Contains(t, d.Reason, "exceeds duration")

	created := Resolve(nil, incoming, policy, DefaultOptions(), t0.Add(time.Hour))
	assert.Equal(t, ActionSkip, created.Action)
}

func TestResolve_ZeroGuard(t *testing.T) {
	policy := models.ProgressPolicy(5)
	opts := DefaultOptions()
	local := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 450, Duration: 3600})
	incoming := progressRecord(t0.Add(time.Second), models.Progress{EpisodeID: "ep-1", Position: 0, Duration: 3600})

	tests := []struct {
		name   string
		now    time.Time
		action Action
	}{
		{name: "recent local value is protected", now: t0.Add(time.Second), action: ActionSkip},
		{name: "old local value can be zeroed", now: t0.Add(time.Minute), action: ActionOverwrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Resolve(local, incoming, policy, opts, tt.now)
			assert.Equal(t, tt.action, d.Action)
		})
	}
}

func TestZeroGuardHolds(t *testing.T) {
	policy := models.ProgressPolicy(5)
	opts := Options{RecencyWindow: 2 * time.Second, ZeroGuardMin: 1}
	local := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 450})

	held, field := ZeroGuardHolds(local, models.Fields{models.FieldPosition: 0.0}, policy, opts, t0.Add(time.Second))
	assert.True(t, held)
	assert.Equal(t, models.FieldPosition, field)

	held, _ = ZeroGuardHolds(local, models.Fields{models.FieldPosition: 12.0}, policy, opts, t0.Add(time.Second))
	assert.False(t, held, "non-zero incoming is never guarded")

	held, _ = ZeroGuardHolds(local, models.Fields{}, policy, opts, t0.Add(time.Second))
	assert.False(t, held, "absent field is not a zero")

	small := progressRecord(t0, models.Progress{EpisodeID: "ep-1", Position: 0.5})
	held, _ = ZeroGuardHolds(small, models.Fields{models.FieldPosition: 0.0}, policy, opts, t0.Add(time.Second))
	assert.False(t, held, "insubstantial local value is not protected")

	held, _ = ZeroGuardHolds(nil, models.Fields{models.FieldPosition: 0.0}, policy, opts, t0)
	assert.False(t, held)
}

func TestResolve_OlderSnapshotAfterNewerIsNoOp(t *testing.T) {
	policy := models.CommentPolicy()
	now := t0.Add(time.Hour)
	older := &models.Record{ID: "c1", UpdatedAt: t0, Fields: models.Comment{Text: "v1"}.Fields()}
	newer := &models.Record{ID: "c1", UpdatedAt: t0.Add(time.Minute), Fields: models.Comment{Text: "v2"}.Fields()}

	first := Resolve(nil, newer, policy, DefaultOptions(), now)
	require.Equal(t, ActionCreate, first.Action)

	second := Resolve(first.Result, older, policy, DefaultOptions(), now)
	assert.Equal(t, ActionSkip, second.Action)
}

func TestMergeSticky(t *testing.T) {
	policy := models.ProfilePolicy()

	raised := MergeSticky(models.Fields{models.FieldOnboarded: false}, models.Fields{models.FieldOnboarded: true}, policy)
	assert.Equal(t, models.Fields{models.FieldOnboarded: true}, raised)

	none := MergeSticky(models.Fields{models.FieldOnboarded: true}, models.Fields{models.FieldOnboarded: false}, policy)
	assert.Empty(t, none)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "skip", ActionSkip.String())
	assert.Equal(t, "create", ActionCreate.String())
	assert.Equal(t, "overwrite", ActionOverwrite.String())
	assert.Equal(t, "sticky", ActionSticky.String())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPolicy_Validate(t *testing.T) {
	policy := ProgressPolicy(5)

	tests := []struct {
		fields  Fields
		name    string
		wantErr bool
	}{
		{name: "within duration", fields: Progress{Position: 100, Duration: 200}.Fields()},
		{name: "unknown duration", fields: Progress{Position: 100}.Fields()},
		{name: "inside tolerance", fields: Progress{Position: 204, Duration: 200}.Fields()},
		{name: "beyond tolerance", fields: Progress{Position: 260, Duration: 200}.Fields(), wantErr: true},
		{name: "negative position", fields: Progress{Position: -1, Duration: 200}.Fields(), wantErr: true},
		{name: "negative duration", fields: Progress{Position: 1, Duration: -5}.Fields(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Check(tt.fields)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCommentPolicy_RejectsEmptyText(t *testing.T) {
	policy := CommentPolicy()
	assert.ErrorIs(t, policy.Check(Fields{FieldText: ""}), ErrInvalidValue)
	assert.NoError(t, policy.Check(Fields{FieldText: "hi"}))
}

func TestPolicies_Get(t *testing.T) {
	ps := DefaultPolicies(5)

	p, err := ps.Get(KindProgress)
	require.NoError(t, err)
	assert.True(t, p.IsSticky(FieldCompleted))
	assert.False(t, p.IsSticky(FieldPosition))
	assert.True(t, p.Unique)

	profile, err := ps.Get(KindProfile)
	require.NoError(t, err)
	assert.True(t, profile.IsSticky(FieldOnboarded))
	assert.NoError(t, profile.Check(Fields{}))

	_, err = ps.Get("episode")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestPolicy_PayloadStripsDerived(t *testing.T) {
	policy := CommentPolicy()
	f := Fields{FieldText: "hi", FieldReactions: map[string]any{"👍": 1.0}}

	payload := policy.Payload(f)
	assert.Equal(t, Fields{FieldText: "hi"}, payload)
	assert.True(t, f.Has(FieldReactions), "source fields are not modified")

	assert.Equal(t, Fields{}, ProfilePolicy().Payload(nil))
}

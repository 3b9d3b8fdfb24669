package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/pkg/api"
)

func TestReactionsHandler(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()
	require.NoError(t, s.InsertRecord(ctx, &models.Record{
		ID: "c-1", Kind: models.KindComment, OwnerID: "owner-1", EntityID: "ep-1",
		CreatedAt: baseTime, UpdatedAt: baseTime,
		Fields: models.Comment{EpisodeID: "ep-1", Text: "hi"}.Fields(),
	}))
	h := NewReactionsHandler(setupTestLogger(), s)

	react := func(owner, commentID string, body any) int {
		return serve(h.React, http.MethodPost, "/", body, owner, map[string]string{"comment_id": commentID}).Code
	}

	assert.Equal(t, http.StatusNoContent, react("owner-1", "c-1", api.ReactRequest{Emoji: "🔥"}))
	assert.Equal(t, http.StatusNoContent, react("owner-2", "c-1", api.ReactRequest{Emoji: "🔥"}))
	assert.Equal(t, http.StatusNoContent, react("owner-2", "c-1", api.ReactRequest{Emoji: "👍"}))
	assert.Equal(t, http.StatusNotFound, react("owner-1", "missing", api.ReactRequest{Emoji: "🔥"}))
	assert.Equal(t, http.StatusBadRequest, react("owner-1", "c-1", api.ReactRequest{}))
	assert.Equal(t, http.StatusUnauthorized, react("", "c-1", api.ReactRequest{Emoji: "🔥"}))

	w := serve(h.Summaries, http.MethodGet, "/api/v1/reactions?comment_id=c-1&comment_id=c-2", nil, "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[api.ReactionsResponse](t, w)
	require.Len(t, resp.Summaries, 2)
	assert.Equal(t, "c-1", resp.Summaries[0].CommentID)
	assert.Equal(t, map[string]int{"🔥": 2, "👍": 1}, resp.Summaries[0].Reactions)
	assert.Equal(t, "c-2", resp.Summaries[1].CommentID)
	assert.Empty(t, resp.Summaries[1].Reactions)
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/iudanet/podsync/internal/server/storage"
	"github.com/iudanet/podsync/pkg/api"
)

// maxReactionIDs ограничивает число комментариев в одном запросе сводки
const maxReactionIDs = 200

// ReactionsHandler serves comment reaction summaries
type ReactionsHandler struct {
	logger  *slog.Logger
	storage storage.ReactionStorage
}

// NewReactionsHandler creates a new reactions handler
func NewReactionsHandler(logger *slog.Logger, s storage.ReactionStorage) *ReactionsHandler {
	return &ReactionsHandler{
		logger:  logger,
		storage: s,
	}
}

// Summaries обрабатывает GET /api/v1/reactions?comment_id=a&comment_id=b
func (h *ReactionsHandler) Summaries(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["comment_id"]
	if len(ids) > maxReactionIDs {
		writeError(w, h.logger, http.StatusBadRequest, "too_many_ids", "too many comment ids")
		return
	}

	summaries, err := h.storage.ReactionSummaries(r.Context(), ids)
	if err != nil {
		h.logger.Error("Failed to load reactions", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	resp := api.ReactionsResponse{Summaries: make([]api.ReactionSummary, 0, len(summaries))}
	for id, reactions := range summaries {
		resp.Summaries = append(resp.Summaries, api.ReactionSummary{CommentID: id, Reactions: reactions})
	}
	sort.Slice(resp.Summaries, func(i, j int) bool {
		return resp.Summaries[i].CommentID < resp.Summaries[j].CommentID
	})

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// React обрабатывает POST /api/v1/reactions/{comment_id}
func (h *ReactionsHandler) React(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := GetOwnerID(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "unauthorized", "unauthorized")
		return
	}
	commentID := mux.Vars(r)["comment_id"]

	var req api.ReactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Emoji == "" {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_body", "emoji is required")
		return
	}

	err := h.storage.AddReaction(r.Context(), ownerID, commentID, req.Emoji)
	if errors.Is(err, storage.ErrRecordNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "not_found", "comment not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to add reaction", "error", err, "comment_id", commentID)
		writeError(w, h.logger, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	h.logger.Debug("Reaction added", "owner_id", ownerID, "comment_id", commentID)
	w.WriteHeader(http.StatusNoContent)
}

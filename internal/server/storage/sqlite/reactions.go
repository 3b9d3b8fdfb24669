package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/internal/server/storage"
)

// AddReaction records emoji of ownerID on a comment. Repeated reactions are ignored.
// Returns ErrRecordNotFound if the comment doesn't exist
func (s *Storage) AddReaction(ctx context.Context, ownerID, commentID, emoji string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE id = ? AND kind = ?`,
		commentID, models.KindComment,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check comment: %w", err)
	}
	if exists == 0 {
		return storage.ErrRecordNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reactions (comment_id, owner_id, emoji, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(comment_id, owner_id, emoji) DO NOTHING
	`, commentID, ownerID, emoji, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}

	return nil
}

// ReactionSummaries returns emoji counts per comment id
func (s *Storage) ReactionSummaries(ctx context.Context, commentIDs []string) (summaries map[string]map[string]int, err error) {
	summaries = make(map[string]map[string]int, len(commentIDs))
	if len(commentIDs) == 0 {
		return summaries, nil
	}

	args := make([]any, len(commentIDs))
	for i, id := range commentIDs {
		args[i] = id
		summaries[id] = map[string]int{}
	}

	query := `
		SELECT comment_id, emoji, COUNT(*)
		FROM reactions
		WHERE comment_id IN (?` + strings.Repeat(", ?", len(commentIDs)-1) + `)
		GROUP BY comment_id, emoji
	`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reactions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		var commentID, emoji string
		var count int
		if err := rows.Scan(&commentID, &emoji, &count); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		summaries[commentID][emoji] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return summaries, nil
}

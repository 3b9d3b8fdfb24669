package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/models"
)

// ProgressInput описывает команду progress set
type ProgressInput struct {
	EpisodeID string
	Position  float64
	Duration  float64
	Completed bool
}

func (c *Cli) runProgressSet(ctx context.Context, in ProgressInput) error {
	if in.EpisodeID == "" {
		return errors.New("episode id is required")
	}

	// Прогресс один на эпизод: переиспользуем существующую запись
	id := ""
	existing, err := c.engine.Query(ctx, storage.Predicate{Kind: models.KindProgress, OwnerID: c.ownerID, EntityID: in.EpisodeID})
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	if len(existing) > 0 {
		id = existing[0].ID
	}

	fields := models.Progress{
		EpisodeID: in.EpisodeID,
		Position:  in.Position,
		Duration:  in.Duration,
		Completed: in.Completed,
	}.Fields()

	rec, err := c.engine.Write(ctx, models.KindProgress, id, in.EpisodeID, fields)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	switch {
	case rec == nil:
		c.io.Println("Progress value was rejected.")
		return nil
	case models.ProgressOf(rec).Position != in.Position:
		c.io.Println("Progress value was ignored, keeping the stored position.")
	default:
		c.io.Println("✓ Progress saved")
	}

	c.printRecord(0, rec)
	return nil
}

// ProfileInput описывает команду profile set. Nil-поля не меняются.
type ProfileInput struct {
	DisplayName *string
	AvatarURL   *string
	Interests   []string
	Onboarded   bool
}

func (c *Cli) runProfileSet(ctx context.Context, in ProfileInput) error {
	id := ""
	existing, err := c.engine.Query(ctx, storage.Predicate{Kind: models.KindProfile, OwnerID: c.ownerID})
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if len(existing) > 0 {
		id = existing[0].ID
	}

	fields := models.Fields{}
	if in.DisplayName != nil {
		fields.Set(models.FieldDisplayName, *in.DisplayName)
	}
	if in.AvatarURL != nil {
		fields.Set(models.FieldAvatarURL, *in.AvatarURL)
	}
	if in.Interests != nil {
		fields.Set(models.FieldInterests, models.Profile{Interests: in.Interests}.Fields()[models.FieldInterests])
	}
	if in.Onboarded {
		fields.Set(models.FieldOnboarded, true)
	}
	if len(fields) == 0 && id != "" {
		return errors.New("nothing to change")
	}

	rec, err := c.engine.Write(ctx, models.KindProfile, id, c.ownerID, fields)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if rec == nil {
		c.io.Println("Profile was rejected.")
		return nil
	}

	c.io.Println("✓ Profile saved")
	c.printRecord(0, rec)
	return nil
}

func (c *Cli) runCommentAdd(ctx context.Context, episodeID, text string, at float64) error {
	if episodeID == "" {
		return errors.New("episode id is required")
	}

	rec, err := c.engine.Write(ctx, models.KindComment, "", episodeID, models.Comment{
		EpisodeID:    episodeID,
		Text:         text,
		TimestampSec: at,
	}.Fields())
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	if rec == nil {
		return errors.New("comment text cannot be empty")
	}

	c.io.Println("✓ Comment added")
	c.io.Printf("ID: %s\n", rec.ID)
	return nil
}

func (c *Cli) runCommentEdit(ctx context.Context, id, text string) error {
	existing, err := c.engine.Find(ctx, models.KindComment, id)
	if errors.Is(err, storage.ErrRecordNotFound) || (err == nil && existing.Deleted) {
		return fmt.Errorf("comment %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to load comment: %w", err)
	}

	rec, err := c.engine.Write(ctx, models.KindComment, id, "", models.Fields{models.FieldText: text})
	if err != nil {
		return fmt.Errorf("failed to edit comment: %w", err)
	}
	if rec == nil || models.CommentOf(rec).Text != text {
		return errors.New("comment text cannot be empty")
	}

	c.io.Println("✓ Comment updated")
	return nil
}

func (c *Cli) runDelete(ctx context.Context, kind, id string) error {
	err := c.engine.Delete(ctx, kind, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return fmt.Errorf("%s %s not found", kind, id)
	}
	if err != nil {
		return err
	}

	c.io.Printf("✓ Deleted %s %s\n", kind, id)
	c.io.Println("The deletion will be sent to the server on the next flush.")
	return nil
}

func (c *Cli) runCommentReact(ctx context.Context, commentID, emoji string) error {
	if emoji == "" {
		return errors.New("emoji is required")
	}
	if err := c.reactor.React(ctx, commentID, emoji); err != nil {
		return fmt.Errorf("failed to react: %w", err)
	}

	c.io.Printf("✓ Reacted %s\n", emoji)
	return nil
}

func (c *Cli) runList(ctx context.Context, kind, episodeID string) error {
	records, err := c.engine.Query(ctx, storage.Predicate{Kind: kind, EntityID: episodeID})
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", kind, err)
	}

	c.io.Printf("=== %s ===\n", strings.ToUpper(kind[:1])+kind[1:])
	c.io.Println()

	if len(records) == 0 {
		c.io.Println("No records found.")
		return nil
	}

	c.io.Printf("Found %d record(s):\n", len(records))
	c.io.Println()
	for i, r := range records {
		c.printRecord(i, r)
		c.io.Println()
	}
	return nil
}

func formatReactions(reactions map[string]int) string {
	emojis := make([]string, 0, len(reactions))
	for emoji := range reactions {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)

	parts := make([]string, 0, len(emojis))
	for _, emoji := range emojis {
		parts = append(parts, fmt.Sprintf("%s %d", emoji, reactions[emoji]))
	}
	return strings.Join(parts, "  ")
}

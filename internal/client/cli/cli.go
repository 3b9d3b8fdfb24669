// Package cli implements the podsync client commands on top of the sync engine.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/podsync/internal/client/iocli"
	"github.com/iudanet/podsync/internal/client/storage"
	"github.com/iudanet/podsync/internal/client/sync"
	"github.com/iudanet/podsync/internal/models"
)

//go:generate moq -out engine_mock.go . Engine

// Engine is the part of the sync coordinator the commands use
type Engine interface {
	Write(ctx context.Context, kind, id, entityID string, fields models.Fields) (*models.Record, error)
	Delete(ctx context.Context, kind, id string) error
	Find(ctx context.Context, kind, id string) (*models.Record, error)
	Query(ctx context.Context, pred storage.Predicate) ([]*models.Record, error)
	Observe(ctx context.Context, pred storage.Predicate) (storage.Subscription, error)
	Pull(ctx context.Context, scope sync.Scope, force bool) (*sync.PullResult, error)
	FlushNow(ctx context.Context) (*sync.FlushResult, error)
	Recover(ctx context.Context) (*sync.FlushResult, error)
	PendingCount(ctx context.Context) (int, error)
	CleanupDuplicates(ctx context.Context) (*sync.CleanupResult, error)
	Start(ctx context.Context, topics ...string) error
}

//go:generate moq -out reactor_mock.go . Reactor

// Reactor sends comment reactions directly to the server
type Reactor interface {
	React(ctx context.Context, commentID, emoji string) error
}

type Cli struct {
	io      iocli.IO
	engine  Engine
	reactor Reactor
	ownerID string
}

func New(io iocli.IO, engine Engine, reactor Reactor, ownerID string) *Cli {
	return &Cli{
		io:      io,
		engine:  engine,
		reactor: reactor,
		ownerID: ownerID,
	}
}

// kindArg приводит имя вида из командной строки к виду записи
func kindArg(arg string) (string, error) {
	switch strings.ToLower(arg) {
	case "progress":
		return models.KindProgress, nil
	case "comment", "comments":
		return models.KindComment, nil
	case "profile", "profiles":
		return models.KindProfile, nil
	default:
		return "", fmt.Errorf("unknown kind: %s. Use: progress, comment or profile", arg)
	}
}

func syncState(r *models.Record) string {
	if r.NeedsSync {
		return "pending"
	}
	return "synced"
}

func (c *Cli) printRecord(i int, r *models.Record) {
	c.io.Printf("%d. %s [%s]\n", i+1, r.ID, syncState(r))

	switch r.Kind {
	case models.KindProgress:
		p := models.ProgressOf(r)
		c.io.Printf("   Episode:  %s\n", p.EpisodeID)
		c.io.Printf("   Position: %s / %s\n", formatSeconds(p.Position), formatSeconds(p.Duration))
		if p.Completed {
			c.io.Println("   Completed")
		}
	case models.KindComment:
		cm := models.CommentOf(r)
		c.io.Printf("   Episode:  %s at %s\n", cm.EpisodeID, formatSeconds(cm.TimestampSec))
		c.io.Printf("   Text:     %s\n", cm.Text)
		if len(cm.Reactions) > 0 {
			c.io.Printf("   Reactions: %s\n", formatReactions(cm.Reactions))
		}
	case models.KindProfile:
		p := models.ProfileOf(r)
		c.io.Printf("   Name:      %s\n", p.DisplayName)
		if len(p.Interests) > 0 {
			c.io.Printf("   Interests: %s\n", strings.Join(p.Interests, ", "))
		}
		if p.Onboarded {
			c.io.Println("   Onboarded")
		}
	}

	c.io.Printf("   Updated:  %s\n", r.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}

// formatSeconds печатает позицию как h:mm:ss
func formatSeconds(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
}

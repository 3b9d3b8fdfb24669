package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/client/feed"
	"github.com/iudanet/podsync/internal/client/iocli"
	"github.com/iudanet/podsync/internal/client/storage/boltdb"
	"github.com/iudanet/podsync/internal/client/sync"
	"github.com/iudanet/podsync/internal/clock"
	"github.com/iudanet/podsync/internal/config"
	"github.com/iudanet/podsync/internal/logging"
	"github.com/iudanet/podsync/internal/merge"
	"github.com/iudanet/podsync/internal/models"
)

// dbFile имя файла локальной базы внутри data_dir
const dbFile = "podsync.db"

// BuildInfo is the version information set via ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// SessionFunc runs one command against an opened engine
type SessionFunc func(ctx context.Context, c *Cli) error

// Opener opens the engine for a command. Tests replace it to run commands
// against mocks.
type Opener func(ctx context.Context, cmd *cobra.Command, io iocli.IO, configFile string) (*Cli, func(), error)

type root struct {
	io         iocli.IO
	open       Opener
	configFile string
}

// NewRootCmd builds the podsync client command tree
func NewRootCmd(info BuildInfo, io iocli.IO) *cobra.Command {
	return newRootCmd(info, io, openSession)
}

func newRootCmd(info BuildInfo, io iocli.IO, open Opener) *cobra.Command {
	r := &root{io: io, open: open}

	cmd := &cobra.Command{
		Use:           "podsync",
		Short:         "Offline-first sync client for podcast progress, comments and profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&r.configFile, "config", "", "Path to a YAML config file")
	flags.String("server-url", "http://localhost:8080", "Server URL")
	flags.String("token", "", "Access token (prompted when empty)")
	flags.String("data-dir", ".podsync", "Directory of the local database")
	flags.Duration("debounce", sync.DefaultOptions().Debounce, "Quiet period before pending writes are pushed")
	flags.Duration("pull-ttl", sync.DefaultOptions().TTL, "How long a pulled scope stays fresh")
	flags.Duration("network-timeout", sync.DefaultOptions().NetworkTimeout, "Timeout of one remote call")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-file", "", "Write logs to a rotating file instead of stderr")

	cmd.AddCommand(
		r.progressCmd(),
		r.commentCmd(),
		r.profileCmd(),
		r.listCmd(),
		r.pullCmd(),
		r.flushCmd(),
		r.recoverCmd(),
		r.dedupeCmd(),
		r.statusCmd(),
		r.watchCmd(),
		versionCmd(info, io),
	)

	return cmd
}

// run открывает движок, выполняет fn и закрывает всё за собой
func (r *root) run(cmd *cobra.Command, fn SessionFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, closeFn, err := r.open(ctx, cmd, r.io, r.configFile)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, c)
}

func (r *root) progressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Manage listening progress",
	}

	var in ProgressInput
	set := &cobra.Command{
		Use:   "set <episode-id> <position>",
		Short: "Save the playback position of an episode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}
			in.EpisodeID = args[0]
			in.Position = position
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runProgressSet(ctx, in)
			})
		},
	}
	set.Flags().Float64Var(&in.Duration, "duration", 0, "Episode duration in seconds")
	set.Flags().BoolVar(&in.Completed, "completed", false, "Mark the episode as completed")

	cmd.AddCommand(set)
	return cmd
}

func (r *root) commentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage episode comments",
	}

	var at float64
	add := &cobra.Command{
		Use:   "add <episode-id> <text>",
		Short: "Add a comment to an episode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runCommentAdd(ctx, args[0], args[1], at)
			})
		},
	}
	add.Flags().Float64Var(&at, "at", 0, "Position in the episode the comment refers to, in seconds")

	edit := &cobra.Command{
		Use:   "edit <comment-id> <text>",
		Short: "Change the text of a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runCommentEdit(ctx, args[0], args[1])
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runDelete(ctx, models.KindComment, args[0])
			})
		},
	}

	react := &cobra.Command{
		Use:   "react <comment-id> <emoji>",
		Short: "React to a comment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runCommentReact(ctx, args[0], args[1])
			})
		},
	}

	cmd.AddCommand(add, edit, del, react)
	return cmd
}

func (r *root) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the user profile",
	}

	var in ProfileInput
	set := &cobra.Command{
		Use:   "set",
		Short: "Change profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Меняются только явно заданные поля
			flags := cmd.Flags()
			if flags.Changed("name") {
				name, _ := flags.GetString("name")
				in.DisplayName = &name
			}
			if flags.Changed("avatar") {
				avatar, _ := flags.GetString("avatar")
				in.AvatarURL = &avatar
			}
			if flags.Changed("interests") {
				in.Interests, _ = flags.GetStringSlice("interests")
			}
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runProfileSet(ctx, in)
			})
		},
	}
	set.Flags().String("name", "", "Display name")
	set.Flags().String("avatar", "", "Avatar URL")
	set.Flags().StringSlice("interests", nil, "Comma-separated list of interests")
	set.Flags().BoolVar(&in.Onboarded, "onboarded", false, "Mark onboarding as finished")

	cmd.AddCommand(set)
	return cmd
}

func (r *root) listCmd() *cobra.Command {
	var episodeID string
	cmd := &cobra.Command{
		Use:   "list <progress|comment|profile>",
		Short: "List local records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runList(ctx, kind, episodeID)
			})
		},
	}
	cmd.Flags().StringVar(&episodeID, "episode", "", "Only records of this episode")
	return cmd
}

func (r *root) pullCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "pull [kind]",
		Short: "Merge server records into the local store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := syncKinds
			if len(args) == 1 {
				kind, err := kindArg(args[0])
				if err != nil {
					return err
				}
				kinds = []string{kind}
			}
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runPull(ctx, kinds, force)
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Ignore the freshness window")
	return cmd
}

func (r *root) flushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Push pending local writes now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runFlush(ctx)
			})
		},
	}
}

func (r *root) recoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Push every record left unsynced by an earlier run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runRecover(ctx)
			})
		},
	}
}

func (r *root) dedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate progress records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runDedupe(ctx)
			})
		},
	}
}

func (r *root) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show records waiting to be pushed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runStatus(ctx)
			})
		},
	}
}

func (r *root) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <progress|comment|profile>",
		Short: "Print local records on every change until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			return r.run(cmd, func(ctx context.Context, c *Cli) error {
				return c.runWatch(ctx, kind)
			})
		},
	}
}

func versionCmd(info BuildInfo, io iocli.IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			io.Printf("Podsync Client\n")
			io.Printf("Version:    %s\n", info.Version)
			io.Printf("Build Date: %s\n", info.BuildDate)
			io.Printf("Git Commit: %s\n", info.GitCommit)
		},
	}
}

// openSession собирает движок синхронизации из настроек
func openSession(ctx context.Context, cmd *cobra.Command, io iocli.IO, configFile string) (*Cli, func(), error) {
	cfg, err := config.LoadClient(viper.New(), configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	token, err := resolveToken(io, cfg.Token)
	if err != nil {
		return nil, nil, err
	}
	ownerID, err := ownerFromToken(token)
	if err != nil {
		return nil, nil, err
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	store, err := boltdb.New(ctx, filepath.Join(cfg.DataDir, dbFile))
	if err != nil {
		_ = logCloser.Close()
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := api.NewClient(cfg.ServerURL, token, cfg.NetworkTimeout)
	coord := sync.NewCoordinator(sync.Deps{
		Store:     store,
		Meta:      store,
		Remote:    client,
		Feed:      feed.NewSubscriber(cfg.ServerURL, token, feed.DefaultOptions(), logger),
		Clock:     clock.New(),
		Policies:  models.DefaultPolicies(cfg.ProgressTolerance),
		Enrichers: map[string]sync.Enricher{models.KindComment: sync.NewReactionsEnricher(client)},
	}, ownerID, sync.Options{
		Merge: merge.Options{
			RecencyWindow: cfg.RecencyWindow,
			ZeroGuardMin:  cfg.ZeroGuardMin,
		},
		Debounce:         cfg.Debounce,
		TTL:              cfg.PullTTL,
		NetworkTimeout:   cfg.NetworkTimeout,
		FlushConcurrency: cfg.FlushConcurrency,
	}, logger)

	closeFn := func() {
		// Записи этой сессии отправляются сразу; при ошибке они остаются
		// с needs_sync и уходят командой recover
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.NetworkTimeout)
		if result, err := coord.FlushNow(flushCtx); err != nil {
			logger.Warn("Pending writes not pushed", "error", err)
		} else if result.Failed+result.Rejected > 0 {
			logger.Warn("Some writes stay pending", "failed", result.Failed, "rejected", result.Rejected)
		}
		cancel()

		coord.Dispose()
		if err := store.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
		_ = logCloser.Close()
	}

	return New(io, coord, client, ownerID), closeFn, nil
}

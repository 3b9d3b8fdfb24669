package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/podsync/internal/config"
	"github.com/iudanet/podsync/internal/logging"
	"github.com/iudanet/podsync/internal/server"
	"github.com/iudanet/podsync/internal/server/handlers"
	"github.com/iudanet/podsync/pkg/api"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "podsync-server",
	Short:         "Podsync authority: record storage, REST API and change feed",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the websocket change feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(viper.New(), configFile, cmd.Flags())
		if err != nil {
			return err
		}

		logger, logCloser, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		defer func() {
			_ = logCloser.Close()
		}()

		srv, err := server.New(cmd.Context(), cfg, logger, Version)
		if err != nil {
			return err
		}
		defer func() {
			if err := srv.Close(); err != nil {
				logger.Error("Failed to close server", "error", err)
			}
		}()

		logger.Info("Podsync server starting", "version", Version, "addr", cfg.Addr, "db", cfg.DBPath)
		return srv.Run(cmd.Context())
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <owner-id>",
	Short: "Issue an access token for an owner",
	Long: `Issue a bearer token signed with the configured jwt_secret.

The token subject is the owner id: every record the client writes with this
token belongs to that owner.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(viper.New(), configFile, cmd.Flags())
		if err != nil {
			return err
		}

		token, expiresIn, err := handlers.GenerateAccessToken(handlers.JWTConfig{
			Secret:         []byte(cfg.JWTSecret),
			AccessTokenTTL: cfg.TokenTTL,
		}, args[0])
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(api.TokenResponse{AccessToken: token, ExpiresIn: expiresIn})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Podsync Server\n")
		fmt.Fprintf(out, "Version:    %s\n", Version)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML config file")
	flags.String("jwt-secret", "", "Secret used to sign access tokens (at least 16 characters)")
	flags.Duration("token-ttl", 24*time.Hour, "Lifetime of issued access tokens")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-file", "", "Write logs to a rotating file instead of stderr")

	serveFlags := serveCmd.Flags()
	serveFlags.String("addr", ":8080", "Listen address")
	serveFlags.String("db-path", "podsync.db", "Path to the sqlite database")
	serveFlags.Bool("partial-events", false, "Send feed events without the record body")

	rootCmd.AddCommand(serveCmd, tokenCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

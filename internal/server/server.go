// Package server wires the remote authority: sqlite storage, HTTP handlers,
// middleware and the websocket change feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iudanet/podsync/internal/config"
	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/internal/server/feed"
	"github.com/iudanet/podsync/internal/server/handlers"
	"github.com/iudanet/podsync/internal/server/middleware"
	"github.com/iudanet/podsync/internal/server/storage/sqlite"
)

const healthPath = "/api/v1/health"

// Server is the remote authority
type Server struct {
	cfg     *config.Server
	logger  *slog.Logger
	storage *sqlite.Storage
	hub     *feed.Hub
	limiter *middleware.RateLimiter
	router  *mux.Router
	jwt     handlers.JWTConfig
}

// New открывает базу, применяет миграции и собирает маршруты
func New(ctx context.Context, cfg *config.Server, logger *slog.Logger, version string) (*Server, error) {
	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		storage: store,
		hub: feed.NewHub(logger, feed.Options{
			WriteTimeout: cfg.FeedWriteTimeout,
			Buffer:       cfg.FeedBuffer,
		}),
		limiter: middleware.NewRateLimiter(middleware.RateLimitConfig{
			Interval: cfg.RateInterval,
			Burst:    cfg.RateBurst,
		}, 0, logger),
		jwt: handlers.JWTConfig{
			Secret:         []byte(cfg.JWTSecret),
			AccessTokenTTL: cfg.TokenTTL,
		},
	}
	s.router = s.routes(version)

	return s, nil
}

func (s *Server) routes(version string) *mux.Router {
	records := handlers.NewRecordsHandler(s.logger, s.storage, s.hub,
		models.DefaultPolicies(s.cfg.ProgressTolerance), s.cfg.PartialEvents)
	reactions := handlers.NewReactionsHandler(s.logger, s.storage)
	health := handlers.NewHealthHandler(s.logger, s.storage, version)

	r := mux.NewRouter()
	r.Use(middleware.RecoveryMiddleware(s.logger))
	r.Use(middleware.LoggingWithSkip(s.logger, []string{healthPath}))

	r.HandleFunc(healthPath, health.Health).Methods(http.MethodGet)

	// Все остальные маршруты требуют токен
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware(s.logger, s.jwt))
	api.Use(middleware.RateLimitMiddleware(s.limiter, s.logger))

	api.HandleFunc("/records/{kind}", records.List).Methods(http.MethodGet)
	api.HandleFunc("/records/{kind}", records.Create).Methods(http.MethodPost)
	api.HandleFunc("/records/{kind}/{id}", records.Get).Methods(http.MethodGet)
	api.HandleFunc("/records/{kind}/{id}", records.Update).Methods(http.MethodPut)
	api.HandleFunc("/records/{kind}/{id}", records.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/reactions", reactions.Summaries).Methods(http.MethodGet)
	api.HandleFunc("/reactions/{comment_id}", reactions.React).Methods(http.MethodPost)

	api.Handle("/feed/{topic}", s.hub).Methods(http.MethodGet)

	return r
}

// Handler returns the HTTP handler of the authority
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the change feed hub
func (s *Server) Hub() *feed.Hub {
	return s.hub
}

// IssueToken выпускает токен доступа для владельца
func (s *Server) IssueToken(ownerID string) (string, int64, error) {
	return handlers.GenerateAccessToken(s.jwt, ownerID)
}

// Run слушает cfg.Addr до отмены ctx, затем корректно останавливается
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve принимает соединения ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// WriteTimeout не задаётся: соединения ленты живут долго
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")

	// Подписчики ленты отключаются первыми, иначе Shutdown их не дождётся
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// Close releases the storage and background workers
func (s *Server) Close() error {
	s.hub.Close()
	s.limiter.Stop()
	return s.storage.Close()
}

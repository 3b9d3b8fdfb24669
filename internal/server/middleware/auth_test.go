package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/podsync/internal/server/handlers"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:         []byte("test-secret-key"),
		AccessTokenTTL: 15 * time.Minute,
	}
}

// rejectingHandler fails the test if the request gets through
func rejectingHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be called")
	}
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtConfig := testJWTConfig()

	token, _, err := handlers.GenerateAccessToken(jwtConfig, "owner-123")
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), jwtConfig)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := handlers.GetOwnerID(r.Context())
		require.True(t, ok, "owner_id should be in context")
		assert.Equal(t, "owner-123", ownerID)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	handler := AuthMiddleware(setupTestLogger(), testJWTConfig())(rejectingHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing token")
}

func TestAuthMiddleware_InvalidAuthHeaderFormat(t *testing.T) {
	handler := AuthMiddleware(setupTestLogger(), testJWTConfig())(rejectingHandler(t))

	tests := []struct {
		name   string
		header string
	}{
		{name: "no Bearer prefix", header: "token123"},
		{name: "wrong prefix", header: "Basic token123"},
		{name: "only Bearer", header: "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", tt.header)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "invalid token format")
		})
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtConfig := testJWTConfig()

	expiredCfg := jwtConfig
	expiredCfg.AccessTokenTTL = -time.Minute
	expired, _, err := handlers.GenerateAccessToken(expiredCfg, "owner-123")
	require.NoError(t, err)

	foreignCfg := jwtConfig
	foreignCfg.Secret = []byte("another-secret")
	foreign, _, err := handlers.GenerateAccessToken(foreignCfg, "owner-123")
	require.NoError(t, err)

	handler := AuthMiddleware(setupTestLogger(), jwtConfig)(rejectingHandler(t))

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed token", token: "invalid.token.here"},
		{name: "empty token", token: ""},
		{name: "random string", token: "randomstring123"},
		{name: "expired token", token: expired},
		{name: "wrong secret", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "invalid token")
		})
	}
}

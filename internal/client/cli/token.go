package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/podsync/internal/client/iocli"
)

// ErrNoToken возвращается, когда токен не задан ни в настройках, ни вводом
var ErrNoToken = errors.New("access token is required")

// resolveToken returns the configured token or asks for it on the terminal
func resolveToken(io iocli.IO, configured string) (string, error) {
	token := strings.TrimSpace(configured)
	if token != "" {
		return token, nil
	}

	token, err := io.ReadSecret("Access token: ")
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// ownerFromToken извлекает владельца из subject токена.
// Подпись проверяет сервер, клиенту нужен только subject.
func ownerFromToken(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("malformed access token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("access token has no subject")
	}
	return claims.Subject, nil
}

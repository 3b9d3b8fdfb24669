// Package feed subscribes to the authority's websocket change feed and keeps
// the subscription alive across connection loss.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sethvargo/go-retry"

	clientapi "github.com/iudanet/podsync/internal/client/api"
	"github.com/iudanet/podsync/internal/models"
	"github.com/iudanet/podsync/pkg/api"
)

// Message is one item delivered to a feed consumer. Either Event is set, or
// Reconnected is true and the consumer should catch up on missed changes.
type Message struct {
	Event       models.ChangeEvent
	Reconnected bool
}

// Options configures reconnect backoff.
type Options struct {
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// DefaultOptions returns the reconnect defaults.
func DefaultOptions() Options {
	return Options{
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Subscriber dials <baseURL>/api/v1/feed/<topic> with a bearer token.
type Subscriber struct {
	logger  *slog.Logger
	baseURL string
	token   string
	opts    Options
}

// NewSubscriber creates a change-feed subscriber
func NewSubscriber(baseURL, token string, opts Options, logger *slog.Logger) *Subscriber {
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = DefaultOptions().MinBackoff
	}
	if opts.MaxBackoff < opts.MinBackoff {
		opts.MaxBackoff = opts.MinBackoff
	}
	return &Subscriber{
		logger:  logger,
		baseURL: baseURL,
		token:   token,
		opts:    opts,
	}
}

// Subscribe streams events of topic until ctx is done, then closes the channel.
// Connection errors are logged and retried with exponential backoff.
func (s *Subscriber) Subscribe(ctx context.Context, topic string) <-chan Message {
	out := make(chan Message)

	go func() {
		defer close(out)

		backoff := s.newBackoff()
		connected := false
		for {
			delivered, err := s.run(ctx, topic, out, connected)
			if ctx.Err() != nil {
				return
			}
			if delivered {
				// После успешного соединения задержка начинается заново
				connected = true
				backoff = s.newBackoff()
			}

			wait, _ := backoff.Next()
			s.logger.Warn("Change feed disconnected",
				"topic", topic,
				"error", err,
				"retry_in", wait)

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()

	return out
}

// newBackoff returns exponential delays from MinBackoff capped at MaxBackoff
func (s *Subscriber) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(s.opts.MaxBackoff, retry.NewExponential(s.opts.MinBackoff))
}

// run holds one connection. It reports whether the connection was established.
func (s *Subscriber) run(ctx context.Context, topic string, out chan<- Message, reconnect bool) (bool, error) {
	wsURL, err := feedURL(s.baseURL, topic)
	if err != nil {
		return false, err
	}

	header := http.Header{}
	if s.token != "" {
		header.Set("Authorization", "Bearer "+s.token)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return false, fmt.Errorf("dial change feed: %w", err)
	}
	defer func() {
		_ = conn.Close(websocket.StatusNormalClosure, "")
	}()

	s.logger.Info("Change feed connected", "topic", topic, "reconnect", reconnect)

	if reconnect {
		// События, пропущенные без соединения, догоняются принудительным pull
		select {
		case out <- Message{Reconnected: true}:
		case <-ctx.Done():
			return true, ctx.Err()
		}
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return true, err
			}
			return true, fmt.Errorf("read change feed: %w", err)
		}

		var dto api.ChangeEvent
		if err := json.Unmarshal(data, &dto); err != nil {
			s.logger.Warn("Skipping malformed change event", "topic", topic, "error", err)
			continue
		}

		select {
		case out <- Message{Event: clientapi.EventFromDTO(dto)}:
		case <-ctx.Done():
			return true, ctx.Err()
		}
	}
}

func feedURL(baseURL, topic string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/feed/" + url.PathEscape(topic)
	return u.String(), nil
}

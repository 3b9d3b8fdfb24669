// Package feed broadcasts record changes to websocket subscribers.
// A subscription is scoped to one owner and one topic (record kind).
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"
	"github.com/oklog/ulid/v2"

	"github.com/iudanet/podsync/internal/server/handlers"
	"github.com/iudanet/podsync/pkg/api"
)

// Options configures the hub
type Options struct {
	WriteTimeout time.Duration // таймаут записи одного события
	Buffer       int           // очередь событий на подписчика
}

// DefaultOptions returns the hub defaults
func DefaultOptions() Options {
	return Options{
		WriteTimeout: 5 * time.Second,
		Buffer:       64,
	}
}

type subscriber struct {
	send chan []byte
}

// Hub fans out change events to the subscribers of owner/topic
type Hub struct {
	logger  *slog.Logger
	clients map[string]map[*subscriber]struct{}
	opts    Options
	mu      sync.Mutex
	closed  bool
}

// NewHub creates a change feed hub
func NewHub(logger *slog.Logger, opts Options) *Hub {
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultOptions().Buffer
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultOptions().WriteTimeout
	}
	return &Hub{
		logger:  logger,
		clients: make(map[string]map[*subscriber]struct{}),
		opts:    opts,
	}
}

func feedKey(ownerID, topic string) string {
	return ownerID + "/" + topic
}

// Publish assigns the event id and delivers ev to every subscriber of the
// owner's topic. A subscriber whose queue is full is disconnected; it
// catches up with a pull after reconnecting.
func (h *Hub) Publish(ownerID string, ev api.ChangeEvent) api.ChangeEvent {
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}
	ev.OwnerID = ownerID

	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal change event", "event_id", ev.ID, "error", err)
		return ev
	}

	key := feedKey(ownerID, ev.Topic)

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.clients[key] {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("Feed subscriber too slow, disconnecting", "owner_id", ownerID, "topic", ev.Topic)
			h.drop(key, sub)
		}
	}

	return ev
}

// Subscribers returns the number of live subscribers of owner/topic
func (h *Hub) Subscribers(ownerID, topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients[feedKey(ownerID, topic)])
}

// Close disconnects every subscriber and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for key, subs := range h.clients {
		for sub := range subs {
			h.drop(key, sub)
		}
	}
}

// ServeHTTP обрабатывает GET /api/v1/feed/{topic}
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := handlers.GetOwnerID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	topic := mux.Vars(r)["topic"]
	if topic == "" {
		http.Error(w, "Topic is required", http.StatusBadRequest)
		return
	}

	sub := &subscriber{send: make(chan []byte, h.opts.Buffer)}
	key := feedKey(ownerID, topic)
	if !h.add(key, sub) {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.remove(key, sub)

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	h.logger.Info("Feed subscriber connected", "owner_id", ownerID, "topic", topic)

	// Клиент ничего не присылает: чтение нужно только для обработки close-фреймов
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			h.logger.Info("Feed subscriber disconnected", "owner_id", ownerID, "topic", topic)
			return

		case data, ok := <-sub.send:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "feed closed")
				return
			}

			wctx, cancel := context.WithTimeout(ctx, h.opts.WriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				h.logger.Warn("Failed to send change event", "owner_id", ownerID, "topic", topic, "error", err)
				return
			}
		}
	}
}

func (h *Hub) add(key string, sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if h.clients[key] == nil {
		h.clients[key] = make(map[*subscriber]struct{})
	}
	h.clients[key][sub] = struct{}{}
	return true
}

func (h *Hub) remove(key string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[key][sub]; ok {
		h.drop(key, sub)
	}
}

// drop unregisters sub and closes its queue. Caller holds mu.
func (h *Hub) drop(key string, sub *subscriber) {
	delete(h.clients[key], sub)
	if len(h.clients[key]) == 0 {
		delete(h.clients, key)
	}
	close(sub.send)
}

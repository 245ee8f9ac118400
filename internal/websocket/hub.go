package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
)

var ErrHubUnavailable = errors.New("chat hub unavailable")

// Hub tracks live relays so they can be counted and closed on shutdown.
type Hub struct {
	// relays by id
	relays map[string]*Relay

	register   chan *Relay
	unregister chan *Relay

	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		relays:     make(map[string]*Relay),
		register:   make(chan *Relay, 256),
		unregister: make(chan *Relay, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done, then closes every relay.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case relay := <-h.register:
			h.mu.Lock()
			h.relays[relay.ID] = relay
			total := len(h.relays)
			h.mu.Unlock()
			logger.Info("Chat relay registered", map[string]interface{}{
				"relay_id":     relay.ID,
				"user_id":      relay.UserID,
				"total_relays": total,
			})

		case relay := <-h.unregister:
			h.mu.Lock()
			delete(h.relays, relay.ID)
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			relays := make([]*Relay, 0, len(h.relays))
			for _, r := range h.relays {
				relays = append(relays, r)
			}
			h.relays = make(map[string]*Relay)
			h.mu.Unlock()

			for _, r := range relays {
				r.Close()
			}
			logger.Info("Chat hub stopped", map[string]interface{}{
				"closed_relays": len(relays),
			})
			return
		}
	}
}

// Register adds a relay. Once the hub has stopped the relay is closed instead.
func (h *Hub) Register(relay *Relay) {
	select {
	case <-h.done:
		relay.Close()
		return
	default:
	}

	select {
	case h.register <- relay:
	case <-h.done:
		relay.Close()
	}
}

// Unregister drops a relay; a no-op once the hub has stopped.
func (h *Hub) Unregister(relay *Relay) {
	select {
	case h.unregister <- relay:
	case <-h.done:
	}
}

// Count returns the number of live relays.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.relays)
}

// NewUpgrader accepts browser upgrades from the allowed origins only. An
// empty list or "*" allows any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 || allowed["*"] {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}
}

// DialHub opens the upstream side of a relay, forwarding the session token
// as a bearer header.
func DialHub(ctx context.Context, hubURL, token string) (*websocket.Conn, error) {
	target, err := hubWebSocketURL(hubURL)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, fmt.Errorf("%w: %s (status %d): %v", ErrHubUnavailable, target, status, err)
	}
	return conn, nil
}

func hubWebSocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid hub url %q", ErrHubUnavailable, raw)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrHubUnavailable, u.Scheme)
	}
	return u.String(), nil
}

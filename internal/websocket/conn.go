package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from either peer.
	maxMessageSize = 100 * 1024

	// Frames per second a browser may send before frames are dropped.
	maxMessagesPerSecond = 10
)

// Conn is one side of a relay. Writes are serialized: the pump and the
// keepalive both write.
type Conn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func NewConn(c *websocket.Conn) *Conn {
	return &Conn{Conn: c}
}

func (c *Conn) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(messageType, data)
}

func (c *Conn) prepareRead() {
	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
}

// Relay couples a browser connection with its connection to the chat hub.
// Frames are copied both ways until either side goes away.
type Relay struct {
	ID       string
	UserID   int64
	Client   *Conn
	Upstream *Conn

	hub       *Hub
	done      chan struct{}
	closeOnce sync.Once

	// touched only by the client read pump
	messageCount  int
	lastResetTime time.Time
}

func NewRelay(hub *Hub, userID int64, client, upstream *websocket.Conn) *Relay {
	return &Relay{
		ID:            uuid.NewString(),
		UserID:        userID,
		Client:        NewConn(client),
		Upstream:      NewConn(upstream),
		hub:           hub,
		done:          make(chan struct{}),
		lastResetTime: time.Now(),
	}
}

// Run blocks until the relay ends. Both connections are closed on return.
func (r *Relay) Run() {
	if r.hub != nil {
		r.hub.Register(r)
		defer r.hub.Unregister(r)
	}

	r.Client.prepareRead()
	r.Upstream.prepareRead()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		r.pump(r.Client, r.Upstream, true)
	}()
	go func() {
		defer wg.Done()
		r.pump(r.Upstream, r.Client, false)
	}()
	go func() {
		defer wg.Done()
		r.keepalive()
	}()
	wg.Wait()

	logger.Info("Chat relay closed", map[string]interface{}{
		"relay_id": r.ID,
		"user_id":  r.UserID,
	})
}

// Close ends the relay; safe to call more than once.
func (r *Relay) Close() {
	r.closeOnce.Do(func() {
		close(r.done)
		closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = r.Client.write(websocket.CloseMessage, closing)
		_ = r.Upstream.write(websocket.CloseMessage, closing)
		r.Client.Close()
		r.Upstream.Close()
	})
}

func (r *Relay) pump(src, dst *Conn, fromClient bool) {
	defer r.Close()

	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Chat relay read error", map[string]interface{}{
					"relay_id":    r.ID,
					"from_client": fromClient,
					"error":       err.Error(),
				})
			}
			return
		}

		if fromClient && !r.allow() {
			logger.Warn("Chat frame dropped by rate limit", map[string]interface{}{
				"relay_id": r.ID,
				"user_id":  r.UserID,
			})
			continue
		}

		if err := dst.write(messageType, message); err != nil {
			logger.Warn("Chat relay write error", map[string]interface{}{
				"relay_id":  r.ID,
				"to_client": !fromClient,
				"error":     err.Error(),
			})
			return
		}
	}
}

func (r *Relay) keepalive() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.Client.write(websocket.PingMessage, nil); err != nil {
				r.Close()
				return
			}
			if err := r.Upstream.write(websocket.PingMessage, nil); err != nil {
				r.Close()
				return
			}
		}
	}
}

// allow counts browser frames in one-second windows.
func (r *Relay) allow() bool {
	now := time.Now()
	if now.Sub(r.lastResetTime) >= time.Second {
		r.messageCount = 0
		r.lastResetTime = now
	}
	r.messageCount++
	return r.messageCount <= maxMessagesPerSecond
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dmrelay/internal/model"
	"dmrelay/internal/relay"
)

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return allowedMap[origin]
		},
	}
}

// Client is one websocket connection. It is the connection handle bound in the presence registry.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan model.OutboundEvent
	done chan struct{}
	once sync.Once

	mu       sync.Mutex
	identity int64
	loggedIn bool
}

func newClient(conn *websocket.Conn, buffer int) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan model.OutboundEvent, buffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Push queues an event for the write pump. It never blocks: a full queue or a
// closed client drops the event.
func (c *Client) Push(event model.OutboundEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

func (c *Client) Identity() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity, c.loggedIn
}

func (c *Client) SetIdentity(identity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = identity
	c.loggedIn = true
}

// close stops the write pump, which sends a close frame and releases the connection.
func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// writePump owns every write to the connection.
func (c *Client) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		}
	}
}

// HandleWebSocket handles GET /ws
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := createUpgrader(h.Config.AllowedOrigins)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warn("WebSocket upgrade error", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newClient(conn, h.Config.SendBuffer)
	total, ok := h.Hub.Register(client)
	if !ok {
		h.Log.Info("Rejecting WebSocket connection during shutdown", "remote", r.RemoteAddr)
		conn.Close()
		return
	}
	h.Log.Info("New WebSocket connection", "connection", client.ID(), "remote", r.RemoteAddr, "clients", total)

	go client.writePump(h.Config.WriteTimeout, h.Config.PongTimeout*9/10)

	// The request context is not tied to the hijacked connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.Dispatcher.Disconnect(client)
		client.close()
		remaining := h.Hub.Unregister(client)
		h.Log.Info("Client disconnected", "connection", client.ID(), "clients", remaining)
	}()

	conn.SetReadLimit(h.Config.MaxFrameBytes)
	conn.SetReadDeadline(time.Now().Add(h.Config.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.Config.PongTimeout))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.Log.Debug("WebSocket read error", "connection", client.ID(), "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(h.Config.PongTimeout))

		var event model.InboundEvent
		if err := json.Unmarshal(data, &event); err != nil {
			client.Push(model.ErrorEvent(relay.Code(relay.ErrInvalidEvent), "frame is not a JSON event"))
			continue
		}

		if err := h.Dispatcher.Dispatch(ctx, client, event); err != nil {
			h.Log.Info("event rejected", "connection", client.ID(), "type", event.Type, "error", err)
			client.Push(model.ErrorEvent(relay.Code(err), clientMessage(err)))
		}
	}
}

// clientMessage hides store internals from the client.
func clientMessage(err error) string {
	if errors.Is(err, relay.ErrStoreUnavailable) {
		return relay.ErrStoreUnavailable.Error()
	}
	return err.Error()
}

package handler

import (
	"context"
	"log/slog"
	"sync"

	"dmrelay/internal/model"
)

// broadcastBuffer lets lifecycle events queue without waiting on the fan-out loop.
const broadcastBuffer = 100

// Hub tracks every open websocket client and fans out broadcasts to them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	broadcast chan model.OutboundEvent
	done      chan struct{}
	stopOnce  sync.Once
	log       *slog.Logger

	// readers counts registered clients whose read loop has not returned yet.
	readers sync.WaitGroup
	closing bool
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan model.OutboundEvent, broadcastBuffer),
		done:      make(chan struct{}),
		log:       log,
	}
}

// Register adds a client and returns the number of open clients.
// It reports false once Shutdown has started; the caller must then drop the connection.
func (h *Hub) Register(c *Client) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return len(h.clients), false
	}
	h.clients[c] = struct{}{}
	h.readers.Add(1)
	return len(h.clients), true
}

// Unregister removes a client once its read loop has finished and returns the number of open clients.
func (h *Hub) Unregister(c *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.readers.Done()
	}
	return len(h.clients)
}

// Count returns the number of open clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues an event for every open client.
// Events are delivered in the order they were queued.
func (h *Hub) Broadcast(event model.OutboundEvent) {
	select {
	case h.broadcast <- event:
	case <-h.done:
	}
}

// Run fans queued broadcasts out to all clients until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case event := <-h.broadcast:
			h.fanout(event)
		case <-h.done:
			return
		}
	}
}

// Stop ends Run; later broadcasts are discarded.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Shutdown closes every client and waits until their read loops have returned,
// so no event is still being handled when the store is closed.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	h.log.Info("closing websocket clients", "clients", len(clients))
	for _, client := range clients {
		client.close()
	}

	finished := make(chan struct{})
	go func() {
		h.readers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) fanout(event model.OutboundEvent) {
	// clients マップをスナップショットしてからロックを外すことで、
	// Push 中に Register/Unregister がブロックされないようにする
	h.mu.RLock()
	clientsSnapshot := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clientsSnapshot = append(clientsSnapshot, client)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, client := range clientsSnapshot {
		if !client.Push(event) {
			dropped++
		}
	}
	if dropped > 0 {
		h.log.Warn("broadcast dropped for slow or closed clients", "type", event.Type, "dropped", dropped)
	}
}

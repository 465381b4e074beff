package relay

import (
	"log/slog"
	"sync"

	"dmrelay/internal/model"
	"dmrelay/internal/presence"
)

// Broadcaster sends an event to every connected client.
type Broadcaster interface {
	Broadcast(event model.OutboundEvent)
}

// Lifecycle binds and unbinds connections and announces presence changes.
type Lifecycle struct {
	// mu orders registry mutations with their broadcasts, so the last
	// snapshot sent always matches the registry.
	mu          sync.Mutex
	registry    *presence.Registry
	broadcaster Broadcaster
	log         *slog.Logger
}

func NewLifecycle(log *slog.Logger, registry *presence.Registry, broadcaster Broadcaster) *Lifecycle {
	return &Lifecycle{registry: registry, broadcaster: broadcaster, log: log}
}

// Login binds the identity to the handle and broadcasts the new snapshot.
// A previous handle of the same identity stays open but no longer receives deliveries.
func (l *Lifecycle) Login(identity int64, h presence.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.registry.Lookup(identity); ok && prev.ID() != h.ID() {
		l.log.Info("identity superseded by a newer connection",
			"user_id", identity,
			"previous", prev.ID(),
			"connection", h.ID())
	}
	l.registry.Bind(identity, h)
	online := l.registry.Snapshot()
	l.broadcaster.Broadcast(model.PresenceSnapshot(online))
	l.log.Info("user online", "user_id", identity, "connection", h.ID(), "online", len(online))
}

// Disconnect unbinds the handle. A handle that never logged in is ignored.
func (l *Lifecycle) Disconnect(h presence.Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := l.registry.Unbind(h)
	if len(removed) == 0 {
		return
	}
	online := l.registry.Snapshot()
	l.broadcaster.Broadcast(model.PresenceSnapshot(online))
	l.log.Info("user offline", "user_ids", removed, "connection", h.ID(), "online", len(online))
}

package relay

import (
	"log/slog"

	"dmrelay/internal/model"
	"dmrelay/internal/presence"
)

// TypingRelay forwards typing indicators to online receivers. Nothing is stored.
type TypingRelay struct {
	registry *presence.Registry
	log      *slog.Logger
}

func NewTypingRelay(log *slog.Logger, registry *presence.Registry) *TypingRelay {
	return &TypingRelay{registry: registry, log: log}
}

// NotifyTyping reports whether a peerTyping event was queued for the receiver.
func (r *TypingRelay) NotifyTyping(senderID, receiverID int64) bool {
	h, ok := r.registry.Lookup(receiverID)
	if !ok {
		return false
	}
	return h.Push(model.PeerTyping(senderID))
}

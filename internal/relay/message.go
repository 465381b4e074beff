//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_store.go -package=mocks
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dmrelay/internal/model"
	"dmrelay/internal/presence"
)

// MessageStore is the persistence the relay needs from the durable store.
type MessageStore interface {
	CreateMessage(ctx context.Context, senderID, receiverID int64, textBody, imageBody *string) (int64, error)
}

// MessageRelay persists a message and then attempts live delivery.
type MessageRelay struct {
	store    MessageStore
	registry *presence.Registry
	timeout  time.Duration
	log      *slog.Logger
}

func NewMessageRelay(log *slog.Logger, store MessageStore, registry *presence.Registry, storeTimeout time.Duration) *MessageRelay {
	return &MessageRelay{store: store, registry: registry, timeout: storeTimeout, log: log}
}

// Send stores the message and pushes it to the receiver if they are online.
// An offline receiver is not an error; the message stays available through history.
// Persistence is detached from ctx cancellation and bounded by the store timeout.
func (r *MessageRelay) Send(ctx context.Context, senderID, receiverID int64, payload model.Payload, clientTimestamp string) (int64, error) {
	if !payload.IsText() && !payload.IsImage() {
		return 0, ErrMalformedPayload
	}

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	text, image := payload.Columns()
	id, err := r.store.CreateMessage(storeCtx, senderID, receiverID, text, image)
	if err != nil {
		r.log.Error("failed to store message",
			"sender_id", senderID,
			"receiver_id", receiverID,
			"error", err)
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	h, online := r.registry.Lookup(receiverID)
	if !online {
		r.log.Debug("receiver offline, message stored only",
			"message_id", id,
			"receiver_id", receiverID)
		return id, nil
	}

	if !h.Push(model.Delivered(senderID, payload, clientTimestamp)) {
		r.log.Warn("live delivery dropped",
			"message_id", id,
			"receiver_id", receiverID,
			"connection", h.ID())
		return id, nil
	}
	r.log.Debug("message delivered", "message_id", id, "receiver_id", receiverID)
	return id, nil
}

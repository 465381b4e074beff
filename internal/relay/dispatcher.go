package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"dmrelay/internal/model"
	"dmrelay/internal/presence"
)

// Session is a connection handle that remembers which identity it logged in as.
type Session interface {
	presence.Handle
	Identity() (int64, bool)
	SetIdentity(identity int64)
}

// TokenVerifier resolves a login token to an identity.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Dispatcher routes typed inbound events to the relay components.
type Dispatcher struct {
	lifecycle *Lifecycle
	messages  *MessageRelay
	typing    *TypingRelay
	verifier  TokenVerifier
	validate  *validator.Validate
	log       *slog.Logger
}

// NewDispatcher builds a dispatcher. A nil verifier accepts the identity a client claims at login.
func NewDispatcher(log *slog.Logger, lifecycle *Lifecycle, messages *MessageRelay, typing *TypingRelay, verifier TokenVerifier) *Dispatcher {
	return &Dispatcher{
		lifecycle: lifecycle,
		messages:  messages,
		typing:    typing,
		verifier:  verifier,
		validate:  validator.New(),
		log:       log,
	}
}

// Dispatch handles one inbound event for the session.
// Returned errors concern only this session and are safe to report back to it.
func (d *Dispatcher) Dispatch(ctx context.Context, s Session, ev model.InboundEvent) error {
	switch ev.Type {
	case model.EventLogin:
		return d.login(s, ev)
	case model.EventSendMessage, model.EventSendImage:
		return d.send(ctx, s, ev)
	case model.EventTyping:
		return d.notifyTyping(s, ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

// Disconnect releases whatever the session had bound.
func (d *Dispatcher) Disconnect(s Session) {
	d.lifecycle.Disconnect(s)
}

func (d *Dispatcher) login(s Session, ev model.InboundEvent) error {
	identity := ev.UserID
	if d.verifier != nil {
		if ev.Token == "" {
			return fmt.Errorf("%w: token missing", ErrUnauthorized)
		}
		verified, err := d.verifier.Verify(ev.Token)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		if identity != 0 && identity != verified {
			return fmt.Errorf("%w: token subject does not match userId", ErrUnauthorized)
		}
		identity = verified
	}
	if err := d.validate.Var(identity, "gt=0"); err != nil {
		return fmt.Errorf("%w: userId: %w", ErrInvalidEvent, err)
	}

	s.SetIdentity(identity)
	d.lifecycle.Login(identity, s)
	return nil
}

func (d *Dispatcher) send(ctx context.Context, s Session, ev model.InboundEvent) error {
	sender, ok := s.Identity()
	if !ok {
		return ErrNotLoggedIn
	}
	if err := d.validate.Var(ev.ReceiverID, "gt=0"); err != nil {
		return fmt.Errorf("%w: receiverId: %w", ErrInvalidEvent, err)
	}

	payload := model.Payload{Text: ev.TextBody, Image: ev.ImageBody}
	if ev.Type == model.EventSendMessage && !payload.IsText() {
		return ErrMalformedPayload
	}
	if ev.Type == model.EventSendImage && !payload.IsImage() {
		return ErrMalformedPayload
	}

	_, err := d.messages.Send(ctx, sender, ev.ReceiverID, payload, ev.ClientTimestamp)
	return err
}

func (d *Dispatcher) notifyTyping(s Session, ev model.InboundEvent) error {
	sender, ok := s.Identity()
	if !ok {
		return ErrNotLoggedIn
	}
	if err := d.validate.Var(ev.ReceiverID, "gt=0"); err != nil {
		return fmt.Errorf("%w: receiverId: %w", ErrInvalidEvent, err)
	}
	d.typing.NotifyTyping(sender, ev.ReceiverID)
	return nil
}

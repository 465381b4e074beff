package relay

import (
	"errors"
)

var (
	ErrMalformedPayload = errors.New("exactly one of textBody or imageBody must be set")
	ErrStoreUnavailable = errors.New("message could not be stored")
	ErrNotLoggedIn      = errors.New("login required")
	ErrUnauthorized     = errors.New("login token rejected")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrUnknownEvent     = errors.New("unknown event type")
)

// Code maps an error onto the code reported to the client in an error event.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMalformedPayload):
		return "malformed_payload"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidEvent):
		return "invalid_event"
	case errors.Is(err, ErrUnknownEvent):
		return "unknown_event"
	default:
		return "internal"
	}
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"dmrelay/internal/auth"
	"dmrelay/internal/config"
	"dmrelay/internal/presence"
	"dmrelay/internal/relay"
	"dmrelay/internal/store"
)

// Handler holds application dependencies
type Handler struct {
	Store      *store.Store
	Config     config.Config
	Tokens     *auth.Tokens
	Registry   *presence.Registry
	Hub        *Hub
	Dispatcher *relay.Dispatcher
	Log        *slog.Logger

	validate *validator.Validate
	// dummyHash is compared when a handle is unknown, so both login failures cost one bcrypt run.
	dummyHash string
}

// New creates a new Handler with the given dependencies and wires the relay core.
func New(log *slog.Logger, s *store.Store, cfg config.Config, tokens *auth.Tokens) *Handler {
	registry := presence.NewRegistry()
	hub := NewHub(log)

	// A nil verifier lets clients claim an identity at login.
	var verifier relay.TokenVerifier
	if cfg.RequireLoginToken {
		verifier = tokens
	}

	dispatcher := relay.NewDispatcher(log,
		relay.NewLifecycle(log, registry, hub),
		relay.NewMessageRelay(log, s, registry, cfg.StoreTimeout),
		relay.NewTypingRelay(log, registry),
		verifier,
	)

	dummyHash, err := auth.HashPassword(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		log.Error("failed to prepare dummy credential hash", "error", err)
	}

	return &Handler{
		Store:      s,
		Config:     cfg,
		Tokens:     tokens,
		Registry:   registry,
		Hub:        hub,
		Dispatcher: dispatcher,
		Log:        log,
		validate:   validator.New(),
		dummyHash:  dummyHash,
	}
}

// HandleBroadcast runs the presence fan-out until the hub is stopped.
func (h *Handler) HandleBroadcast() {
	h.Hub.Run()
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// REST API
	r.HandleFunc("/users", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc("/users", h.requireAuth(h.ListUsers)).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", h.requireAuth(h.GetUser)).Methods(http.MethodGet)
	r.HandleFunc("/friends", h.requireAuth(h.ListFriends)).Methods(http.MethodGet)
	r.HandleFunc("/friends", h.requireAuth(h.AddFriend)).Methods(http.MethodPost)
	r.HandleFunc("/messages/{peerId:[0-9]+}", h.requireAuth(h.GetHistory)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	// WebSocket
	r.HandleFunc("/ws", h.HandleWebSocket).Methods(http.MethodGet)

	return r
}

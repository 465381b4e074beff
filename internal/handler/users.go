package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"dmrelay/internal/auth"
	"dmrelay/internal/model"
	"dmrelay/internal/store"
)

type registerRequest struct {
	Handle      string `json:"handle" validate:"required,min=3,max=32,alphanum"`
	DisplayName string `json:"display_name" validate:"required,max=128"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type sessionRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Register handles POST /users
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := auth.CheckStrength(req.Password, h.Config.MinPasswordBits); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, h.Config.BcryptCost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("hash password failed", "route", "POST /users", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user, err := h.Store.CreateUser(r.Context(), req.Handle, req.DisplayName, hash)
	if errors.Is(err, store.ErrDuplicate) {
		writeError(w, http.StatusConflict, "Handle already taken")
		return
	}
	if err != nil {
		h.Log.Error("create user failed", "route", "POST /users", "handle", req.Handle, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.Log.Info("user registered", "route", "POST /users", "user", user.ID, "handle", user.Handle)
	writeJSON(w, http.StatusCreated, user)
}

// CreateSession handles POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.Store.GetUserByHandle(r.Context(), req.Handle)
	if errors.Is(err, store.ErrNotFound) {
		auth.ComparePassword(req.Password, h.dummyHash)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.Log.Error("lookup user failed", "route", "POST /sessions", "handle", req.Handle, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	ok, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		h.Log.Error("compare password failed", "route", "POST /sessions", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Handle)
	if err != nil {
		h.Log.Error("issue token failed", "route", "POST /sessions", "user", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		h.Log.Error("list users failed", "route", "GET /users", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("get user failed", "route", "GET /users/{id}", "user", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

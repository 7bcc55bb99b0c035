package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/brettonwoods/internal/api/apierr"
	"github.com/mcoot/brettonwoods/internal/api/middleware"
	"github.com/mcoot/brettonwoods/internal/api/request"
	"github.com/mcoot/brettonwoods/internal/api/response"
	"github.com/mcoot/brettonwoods/internal/services/auth"
)

// Accounts registers and logs in players
type Accounts interface {
	Register(ctx context.Context, username, password string) (*auth.Session, error)
	Login(ctx context.Context, username, password string) (*auth.Session, error)
}

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	accounts Accounts
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(accounts Accounts) *PlayerHandler {
	return &PlayerHandler{
		accounts: accounts,
	}
}

func readCredentials(r *http.Request) (request.LoginRequest, error) {
	var req request.LoginRequest
	if err := decodeBody(r, &req, false); err != nil {
		return req, err
	}
	if req.Username == "" {
		return req, apierr.NewInvalidRequestError("username is required")
	}
	if req.Password == "" {
		return req, apierr.NewInvalidRequestError("password is required")
	}
	return req, nil
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := readCredentials(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := middleware.MustGetActor(r.Context())
	response.JSON(w, http.StatusOK, response.PlayerFromActor(actor))
}

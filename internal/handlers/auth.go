package handlers

import (
	"context"
	"net/http"

	"github.com/benx421/bankmt/internal/api"
	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/service"
)

// Register handles POST /api/v1/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var body api.CredentialsRequest
	if err := decodeJSON(w, r, &body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest, err.Error())
		return
	}

	token, account, err := h.sessions.Authenticate(r.Context(),
		func(ctx context.Context, s *service.SessionManager) (*models.Account, error) {
			return s.Register(ctx, body.Username, body.Password)
		})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, api.SessionResponse{
		Token:   token,
		Message: service.RegisteredMessage(account.Username),
		Account: toAPIAccount(account),
	})
}

// Login handles POST /api/v1/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body api.CredentialsRequest
	if err := decodeJSON(w, r, &body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest, err.Error())
		return
	}

	token, account, err := h.sessions.Authenticate(r.Context(),
		func(ctx context.Context, s *service.SessionManager) (*models.Account, error) {
			return s.Login(ctx, body.Username, body.Password)
		})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.SessionResponse{
		Token:   token,
		Message: service.LoginMessage(account.Username),
		Account: toAPIAccount(account),
	})
}

// Logout handles POST /api/v1/logout. It succeeds with or without a live session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := bearerToken(r); ok {
		h.sessions.Close(token)
	}

	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: service.LogoutMessage})
}

// GetAccount handles GET /api/v1/account
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	account, err := session.Refresh(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, toAPIAccount(account))
}

package api

import (
	"context"
	"net/http"

	service "github.com/okian/ekiden/internal/app"
	"github.com/okian/ekiden/internal/domain/model"
	"github.com/okian/ekiden/pkg/logger"
)

// AccountDependencies defines the account operations used by handlers.
type AccountDependencies interface {
	Register(ctx context.Context, reg service.Registration) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Profile(ctx context.Context, memberID string) (model.Profile, error)
	UpdateProfile(ctx context.Context, memberID string, in service.ProfileInput) (model.Profile, error)
}

// AuthHandler handles sign-up and sign-in requests.
type AuthHandler struct {
	deps AccountDependencies
	log  logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(deps AccountDependencies, log logger.Logger) *AuthHandler {
	return &AuthHandler{deps: deps, log: log}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	InviteCode  string `json:"invite_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(r.Context(), h.log, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, err := h.deps.Register(r.Context(), service.Registration{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		InviteCode:  req.InviteCode,
	})
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(r.Context(), h.log, w, WrapKind(op, ErrBadRequest, err))
		return
	}
	sess, err := h.deps.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(r.Context(), h.log, w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

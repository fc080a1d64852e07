package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

// RegisterRequest is the body of POST /users.
type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginRequest is the body of POST /tokens.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// AccountsHandler serves registration and login. Both routes are public.
type AccountsHandler struct {
	accounts AccountService
	validate *validator.Validate
	logger   *log.Logger
}

func NewAccountsHandler(accounts AccountService, validate *validator.Validate, logger *log.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, validate: validate, logger: logger}
}

func (h *AccountsHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/users", Handler: h.Register},
		{Method: http.MethodPost, Path: "/tokens", Handler: h.Login},
	}
}

// Register creates an account.
//
// A password confirmation mismatch answers 200 with an error body and creates nothing,
// even when other fields would fail validation.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("op", "accounts.register", "request_id", middleware.GetReqID(r.Context()))

	var req RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		logger.Warn("failed to decode request body", "error", err)
		respondError(w, r, http.StatusBadRequest, "Failed to decode request")
		return
	}

	if req.Password != req.PasswordConfirmation {
		respondError(w, r, http.StatusOK, auth.ErrPasswordMismatch.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.PasswordConfirmation)
	switch {
	case errors.Is(err, auth.ErrPasswordMismatch):
		respondError(w, r, http.StatusOK, auth.ErrPasswordMismatch.Error())
	case errors.Is(err, shared.ErrDuplicateEmail):
		respondError(w, r, http.StatusBadRequest, "email is already registered")
	case errors.Is(err, auth.ErrPasswordTooLong):
		respondError(w, r, http.StatusBadRequest, auth.ErrPasswordTooLong.Error())
	case errors.Is(err, shared.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, err.Error())
	case err != nil:
		logger.Error("failed to register user", "error", err)
		respondError(w, r, http.StatusInternalServerError, internalError)
	default:
		respond(w, r, http.StatusCreated, user)
	}
}

// Login exchanges an email and password for a token. Any credential problem answers 401.
func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("op", "accounts.login", "request_id", middleware.GetReqID(r.Context()))

	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		logger.Warn("failed to decode request body", "error", err)
		respondError(w, r, http.StatusBadRequest, "Failed to decode request")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, r, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
	case err != nil:
		logger.Error("failed to log in", "error", err)
		respondError(w, r, http.StatusInternalServerError, internalError)
	default:
		respond(w, r, http.StatusOK, TokenResponse{Token: token})
	}
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/scoutdesk/scoutdesk/internal/auth"
	"github.com/scoutdesk/scoutdesk/internal/handler/dto"
	"github.com/scoutdesk/scoutdesk/internal/service"
)

// AuthHandler handles signup, login and the current user's profile.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Signup(r.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetMe handles GET /api/auth/me.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetMe(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /api/auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateMeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	user, err := h.svc.UpdateMe(r.Context(), userID, service.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("profile_updated",
		"user_id", userID,
		"email_changed", req.Email != nil,
	)

	writeJSON(w, http.StatusOK, user)
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrCredentialsRequired):
		writeError(w, http.StatusBadRequest, CodeValidation, "Email and password are required")
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, CodeValidation, "Invalid email address")
	case errors.Is(err, service.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, CodeValidation, "Password is too long")
	case errors.Is(err, service.ErrNameTooLong):
		writeError(w, http.StatusBadRequest, CodeValidation, "Name is too long")
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusBadRequest, CodeUserExists, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, service.ErrEmailInUse):
		writeError(w, http.StatusBadRequest, CodeEmailTaken, "Email already in use")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "User not found")
	default:
		writeInternalError(w, r, h.logger, err)
	}
}

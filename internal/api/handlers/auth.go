package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/keepsakelabs/giftvault/internal/api/errors"
	"github.com/keepsakelabs/giftvault/internal/auth"
)

// AuthHandler handles admin login.
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /auth/login. The admin password grants a
// short-lived token that authorizes vault writes.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, apierrors.NewValidationError("invalid request body"))
		return
	}

	if req.Password == "" {
		apierrors.WriteError(w, apierrors.NewValidationError("password required"))
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			apierrors.WriteError(w, apierrors.NewUnauthorizedError("invalid credentials"))
			return
		}
		h.logger.Error("failed to generate token", "error", err)
		apierrors.WriteError(w, apierrors.NewInternalError("failed to generate token"))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
	})
}

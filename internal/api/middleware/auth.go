package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/keepsakelabs/giftvault/internal/api/errors"
	"github.com/keepsakelabs/giftvault/internal/auth"
)

// contextKey is a private key type for request context values.
type contextKey string

// AdminSubjectKey is the context key for the authenticated admin subject.
const AdminSubjectKey contextKey = "admin_subject"

// GetAdminSubject extracts the admin subject from the request context.
func GetAdminSubject(ctx context.Context) string {
	if v := ctx.Value(AdminSubjectKey); v != nil {
		return v.(string)
	}
	return ""
}

// AuthMiddleware validates admin JWTs on write endpoints.
type AuthMiddleware struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(authService *auth.Service, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
	}
}

// RequireAdmin is a middleware that rejects requests without a valid admin token.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			apierrors.WriteError(w, apierrors.NewUnauthorizedError("Missing authentication"))
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Debug("JWT validation failed", "error", err)
			if errors.Is(err, auth.ErrExpiredToken) {
				apierrors.WriteError(w, apierrors.NewUnauthorizedError("Token has expired"))
				return
			}
			apierrors.WriteError(w, apierrors.NewUnauthorizedError("Invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), AdminSubjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-automation/apitoken"
	"github.com/hairizuan-noorazman/browser-automation/logger"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	// TokenIDKey is the context key for the authenticated token ID.
	TokenIDKey ContextKey = "token_id"

	// TokenNameKey is the context key for the authenticated token name.
	TokenNameKey ContextKey = "token_name"
)

// AuthMiddleware validates API tokens supplied as a Bearer header or an
// X-API-Key header.
type AuthMiddleware struct {
	tokenStore apitoken.Store
	logger     logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware.
func NewAuthMiddleware(tokenStore apitoken.Store, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenStore: tokenStore,
		logger:     log,
	}
}

// Handler wraps an HTTP handler with authentication.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawToken := extractToken(r)
		if rawToken == "" {
			m.logger.Warn(r.Context(), "missing API token", map[string]interface{}{
				"path": r.URL.Path,
			})
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		hash := apitoken.HashToken(rawToken)
		token, err := m.tokenStore.GetByTokenHash(r.Context(), hash)
		if err != nil {
			if errors.Is(err, apitoken.ErrTokenDisabled) {
				m.logger.Warn(r.Context(), "disabled token used", map[string]interface{}{
					"path": r.URL.Path,
				})
				respondError(w, http.StatusUnauthorized, "token has been revoked")
				return
			}
			m.logger.Warn(r.Context(), "invalid API token", map[string]interface{}{
				"path": r.URL.Path,
			})
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), TokenIDKey, token.ID)
		ctx = context.WithValue(ctx, TokenNameKey, token.Name)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the raw token from the Authorization header or the
// X-API-Key header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}

// GetTokenID extracts the authenticated token ID from the request context.
func GetTokenID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(TokenIDKey).(uuid.UUID)
	return id, ok
}

// GetTokenName extracts the authenticated token name from the request context.
func GetTokenName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(TokenNameKey).(string)
	return name, ok
}

package apitoken

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for API token persistence operations.
type Store interface {
	// Create creates a new API token.
	Create(ctx context.Context, token *APIToken) error

	// GetByTokenHash retrieves an enabled token by its SHA-256 hash.
	// Disabled tokens return ErrTokenDisabled.
	GetByTokenHash(ctx context.Context, hash string) (*APIToken, error)

	// Revoke disables a token.
	Revoke(ctx context.Context, id uuid.UUID) error

	// List retrieves all tokens.
	List(ctx context.Context) ([]*APIToken, error)
}

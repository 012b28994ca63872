package script

import (
	"context"
)

// Store defines the interface for script persistence operations.
type Store interface {
	// Create creates a new script in the store.
	Create(ctx context.Context, script *Script) error

	// GetByKey retrieves a script by its unique key.
	GetByKey(ctx context.Context, key string) (*Script, error)

	// Update updates a script with the given setters.
	Update(ctx context.Context, key string, setters ...UpdateSetter) error

	// Delete deletes a script.
	Delete(ctx context.Context, key string) error

	// List retrieves a paginated list of scripts.
	List(ctx context.Context, limit, offset int) ([]*Script, error)
}

// UpdateSetter is a function that updates a script field.
type UpdateSetter func(*Script) error

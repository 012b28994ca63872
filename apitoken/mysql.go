package apitoken

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/browser-automation/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed API token store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new API token.
func (s *MySQLStore) Create(ctx context.Context, token *APIToken) error {
	if err := token.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(token).Error; err != nil {
		s.logger.Error(ctx, "failed to create api token", map[string]interface{}{
			"error": err.Error(),
			"name":  token.Name,
		})
		return err
	}

	s.logger.Info(ctx, "api token created", map[string]interface{}{
		"token_id": token.ID.String(),
		"name":     token.Name,
	})

	return nil
}

// GetByTokenHash retrieves an enabled token by its SHA-256 hash.
func (s *MySQLStore) GetByTokenHash(ctx context.Context, hash string) (*APIToken, error) {
	var token APIToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hash).
		First(&token).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		s.logger.Error(ctx, "failed to get api token by hash", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	if !token.Enabled {
		return nil, ErrTokenDisabled
	}

	return &token, nil
}

// Revoke disables a token.
func (s *MySQLStore) Revoke(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Model(&APIToken{}).
		Where("id = ?", id).
		Update("enabled", false)

	if result.Error != nil {
		s.logger.Error(ctx, "failed to revoke api token", map[string]interface{}{
			"error":    result.Error.Error(),
			"token_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}

	s.logger.Info(ctx, "api token revoked", map[string]interface{}{
		"token_id": id.String(),
	})

	return nil
}

// List retrieves all tokens, newest first.
func (s *MySQLStore) List(ctx context.Context) ([]*APIToken, error) {
	var tokens []*APIToken
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&tokens).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list api tokens", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return tokens, nil
}

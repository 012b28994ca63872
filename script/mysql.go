package script

import (
	"context"
	"errors"

	"github.com/hairizuan-noorazman/browser-automation/logger"
	"gorm.io/gorm"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed script store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new script in the database.
func (s *MySQLStore) Create(ctx context.Context, script *Script) error {
	if err := script.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(script).Error; err != nil {
		s.logger.Error(ctx, "failed to create script", map[string]interface{}{
			"error": err.Error(),
			"key":   script.Key,
		})
		return err
	}

	s.logger.Info(ctx, "script created", map[string]interface{}{
		"script_id": script.ID.String(),
		"key":       script.Key,
		"type":      script.Type,
	})

	return nil
}

// GetByKey retrieves a script by its unique key.
func (s *MySQLStore) GetByKey(ctx context.Context, key string) (*Script, error) {
	var script Script
	err := s.db.WithContext(ctx).
		Where("`key` = ?", key).
		First(&script).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScriptNotFound
		}
		s.logger.Error(ctx, "failed to get script by key", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return nil, err
	}

	return &script, nil
}

// Update updates a script with the given setters.
func (s *MySQLStore) Update(ctx context.Context, key string, setters ...UpdateSetter) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var script Script
		err := tx.WithContext(ctx).
			Where("`key` = ?", key).
			First(&script).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrScriptNotFound
			}
			return err
		}

		for _, setter := range setters {
			if err := setter(&script); err != nil {
				return err
			}
		}

		if err := script.Validate(); err != nil {
			return err
		}

		return tx.WithContext(ctx).Save(&script).Error
	})

	if err != nil {
		if errors.Is(err, ErrScriptNotFound) {
			return err
		}
		s.logger.Error(ctx, "failed to update script", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		return err
	}

	s.logger.Info(ctx, "script updated", map[string]interface{}{
		"key": key,
	})

	return nil
}

// Delete deletes a script by key.
func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).
		Where("`key` = ?", key).
		Delete(&Script{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete script", map[string]interface{}{
			"error": result.Error.Error(),
			"key":   key,
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrScriptNotFound
	}

	s.logger.Info(ctx, "script deleted", map[string]interface{}{
		"key": key,
	})

	return nil
}

// List retrieves a paginated list of scripts, newest first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Script, error) {
	var scripts []*Script
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&scripts).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list scripts", map[string]interface{}{
			"error":  err.Error(),
			"limit":  limit,
			"offset": offset,
		})
		return nil, err
	}

	return scripts, nil
}

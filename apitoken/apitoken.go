// Package apitoken manages the bearer tokens that authenticate capability
// requests. Raw tokens are shown once at mint time; only their SHA-256 digest
// is stored.
package apitoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound    = errors.New("api token not found")
	ErrTokenDisabled    = errors.New("api token is disabled")
	ErrInvalidTokenName = errors.New("token name is required")
)

// APIToken represents an API token for programmatic access.
type APIToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	TokenHash string    `json:"-" gorm:"type:char(64);not null;uniqueIndex:idx_api_tokens_token_hash"`
	Enabled   bool      `json:"enabled" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (APIToken) TableName() string {
	return "api_tokens"
}

// BeforeCreate hook to generate UUID before creating a new token.
func (t *APIToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Validate checks if the token has valid required fields.
func (t *APIToken) Validate() error {
	if t.Name == "" {
		return ErrInvalidTokenName
	}
	if t.TokenHash == "" {
		return errors.New("token_hash is required")
	}
	return nil
}

// GenerateToken creates a new random token with the ba_ prefix.
// Returns the raw token string and its SHA-256 hash.
func GenerateToken() (rawToken string, hash string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	rawToken = "ba_" + base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(bytes)
	hash = HashToken(rawToken)
	return rawToken, hash, nil
}

// HashToken returns the SHA-256 hex digest of a raw token.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h)
}

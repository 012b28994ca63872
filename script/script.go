// Package script stores reusable automation templates and assembles them into
// executable capability payloads. A script pairs a capability type with a DSL
// body and a defaults object; at execution time the body is merged with its
// defaults, interpolated with caller parameters, and optionally overridden by
// a caller payload.
package script

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrScriptNotFound is returned when no script exists for a key or ID.
	ErrScriptNotFound = errors.New("script not found")

	// ErrScriptDisabled is returned when a looked-up script is disabled.
	ErrScriptDisabled = errors.New("script is disabled")

	// ErrInvalidScriptKey is returned when a script key is empty.
	ErrInvalidScriptKey = errors.New("script key is required")

	// ErrInvalidScriptType is returned when the type is not a known capability.
	ErrInvalidScriptType = errors.New("invalid script type")
)

// Valid script types. Each names the capability the assembled payload is
// dispatched to.
const (
	TypeActions    = "actions"
	TypeScreenshot = "screenshot"
	TypeScrape     = "scrape"
	TypePDF        = "pdf"
)

// ValidType reports whether t names a dispatchable capability.
func ValidType(t string) bool {
	switch t {
	case TypeActions, TypeScreenshot, TypeScrape, TypePDF:
		return true
	}
	return false
}

// Document is a JSON object column. It holds the script's DSL body or its
// defaults object.
type Document map[string]interface{}

// Value implements the driver.Valuer interface for database storage.
func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface for database retrieval.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Document: not a byte slice")
	}

	return json.Unmarshal(bytes, d)
}

// Script is a stored automation template, addressed by its unique key.
type Script struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex:idx_key;not null"`
	Type      string    `json:"type" gorm:"not null"`
	DSL       Document  `json:"dsl" gorm:"type:json"`
	Defaults  Document  `json:"defaults" gorm:"type:json"`
	Enabled   bool      `json:"enabled" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new script
func (s *Script) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Validate checks if the script has valid required fields.
func (s *Script) Validate() error {
	if s.Key == "" {
		return ErrInvalidScriptKey
	}
	if !ValidType(s.Type) {
		return ErrInvalidScriptType
	}
	return nil
}

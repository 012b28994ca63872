// Package runlog records capability invocations so operators can audit what
// the service executed and how each run finished.
package runlog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrRunNotFound is returned when a run record is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidKind is returned when kind is not set.
	ErrInvalidKind = errors.New("kind is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")
)

// Status represents the outcome of a recorded run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Run is one recorded capability invocation.
type Run struct {
	ID         uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Kind       string    `json:"kind" gorm:"type:varchar(32);not null;index:idx_kind"`
	URL        string    `json:"url" gorm:"type:text"`
	Status     Status    `json:"status" gorm:"type:varchar(20);not null;index:idx_status"`
	Error      string    `json:"error,omitempty" gorm:"type:text"`
	DurationMs int64     `json:"duration_ms"`
	AssetPath  string    `json:"asset_path,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"index:idx_created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new run
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks if the run has valid required fields.
func (r *Run) Validate() error {
	if r.Kind == "" {
		return ErrInvalidKind
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

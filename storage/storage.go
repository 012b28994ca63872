// Package storage persists captured artifacts (screenshots, PDFs, scraped
// documents) behind a backend-agnostic blob interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrArtifactNotFound is returned when a requested artifact does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidPath is returned when a path is empty or escapes the store.
	ErrInvalidPath = errors.New("invalid path")
)

// BlobStorage defines the interface for storing and retrieving captured
// artifacts.
type BlobStorage interface {
	// Upload stores data from the reader at the specified path.
	Upload(ctx context.Context, path string, reader io.Reader) error

	// Download retrieves the artifact at the specified path.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the artifact at the specified path.
	Delete(ctx context.Context, path string) error

	// Exists checks if an artifact exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)
}

// Config selects and parameterizes a storage backend.
type Config struct {
	// Type is "local" or "s3".
	Type string

	// BaseDir is the root directory for the local backend.
	BaseDir string

	// Bucket and Region configure the S3 backend.
	Bucket string
	Region string
}

// NewBlobStorage creates a BlobStorage implementation from config.
func NewBlobStorage(cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		return NewLocalStorage(cfg.BaseDir)
	case "s3":
		return NewS3Storage(cfg.Bucket, cfg.Region)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

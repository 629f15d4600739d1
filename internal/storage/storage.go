// Package storage defines the persistence interface for the upload ledger.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/autoeval/internal/models"
)

// ErrNotFound is returned when a ledger row does not exist.
var ErrNotFound = errors.New("upload not found")

// Storage records one row per ingested dataset. Dataset contents are never persisted.
type Storage interface {
	RecordUpload(ctx context.Context, u *models.Upload) error
	GetUpload(ctx context.Context, sessionID string) (*models.Upload, error)
	ListUploads(ctx context.Context, offset, limit int) ([]*models.Upload, error)
	CountUploads(ctx context.Context) (int64, error)

	Close() error
}

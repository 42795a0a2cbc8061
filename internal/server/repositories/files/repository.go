// Package files declares the metadata record store for stored files and its
// Postgres, bbolt and in-memory implementations.
package files

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

// Repository is keyed record storage for file metadata with an owner-scoped
// listing. Ownership is not checked here; callers enforce it.
type Repository interface {
	// Create persists a new record. Records are never updated in place:
	// creating an identical record again is a no-op, and a different record
	// under an existing file_id is common.ErrorAlreadyExists.
	Create(ctx context.Context, file *models.File) error

	// GetByID returns the record for fileID or common.ErrorNotFound.
	GetByID(ctx context.Context, fileID string) (*models.File, error)

	// Delete removes the record for fileID; common.ErrorNotFound when absent.
	Delete(ctx context.Context, fileID string) error

	// ListByOwner returns every record owned by ownerID, possibly none.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
}

// checkDuplicate decides a Create that hit an existing file_id.
func checkDuplicate(existing, file *models.File) error {
	if *existing == *file {
		return nil
	}
	return fmt.Errorf("%w: file %s", common.ErrorAlreadyExists, file.FileID)
}

package files

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/filex"
	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
	"go.etcd.io/bbolt"
)

var bucketFiles = []byte("files")

// BoltRepository keeps file records as JSON values in the "files" bucket of
// an embedded bbolt database, keyed by file_id.
//
// ListByOwner scans the whole bucket and filters in process. That is fine at
// the scale this backend targets; use Postgres when it is not.
type BoltRepository struct {
	db     *bbolt.DB
	logger logging.Logger
}

var _ Repository = (*BoltRepository)(nil)

// OpenBoltRepository opens or creates the database at path, creating the
// parent directory and the bucket as needed. Records that cannot be decoded
// are skipped by ListByOwner and reported to logger.
func OpenBoltRepository(path string, logger logging.Logger) (*BoltRepository, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("files: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFiles)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("files: create bucket: %w", err)
	}
	return &BoltRepository{db: db, logger: logger.With("module", "bolt")}, nil
}

// Close closes the underlying database.
func (r *BoltRepository) Close() error { return r.db.Close() }

// Create stores file under its file_id.
func (r *BoltRepository) Create(ctx context.Context, file *models.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode file: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		if current := b.Get([]byte(file.FileID)); current != nil {
			var existing models.File
			if err := json.Unmarshal(current, &existing); err != nil {
				return fmt.Errorf("%w: file %s holds an undecodable record", common.ErrorAlreadyExists, file.FileID)
			}
			return checkDuplicate(&existing, file)
		}
		return b.Put([]byte(file.FileID), data)
	})
}

// GetByID returns the record for fileID or common.ErrorNotFound.
func (r *BoltRepository) GetByID(ctx context.Context, fileID string) (*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var f models.File
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketFiles).Get([]byte(fileID))
		if data == nil {
			return common.ErrorNotFound
		}
		return json.Unmarshal(data, &f)
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Delete removes the record for fileID or returns common.ErrorNotFound.
func (r *BoltRepository) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketFiles)
		if b.Get([]byte(fileID)) == nil {
			return common.ErrorNotFound
		}
		return b.Delete([]byte(fileID))
	})
}

// ListByOwner scans every record and keeps those owned by ownerID. A record
// that does not decode is logged and skipped so one bad value cannot block
// every owner's listing.
func (r *BoltRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []*models.File
	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketFiles).ForEach(func(k, v []byte) error {
			var f models.File
			if err := json.Unmarshal(v, &f); err != nil {
				r.logger.Error(ctx, "skipping undecodable file record", "file_id", string(k), "error", err)
				return nil
			}
			if f.OwnerID == ownerID {
				result = append(result, &f)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

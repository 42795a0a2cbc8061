package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/dbx"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
// Owner listings use the files_owner_id_idx index.
type PostgresRepository struct {
	db dbx.DBTX
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `file_id, owner_id, filename, storage_key, wrapped_data_key, nonce, content_type, size_bytes`

// Create inserts a new file record. Inserting a record identical to the
// stored one is a no-op, so a retried insert whose first attempt committed
// still succeeds; a different record under the same file_id is
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (file_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		file.FileID, file.OwnerID, file.Filename, file.StorageKey,
		file.WrappedDataKey, file.Nonce, file.ContentType, file.SizeBytes)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", dbx.Classify(err))
	}
	if ra == 1 {
		return nil
	}

	existing, err := r.GetByID(ctx, file.FileID)
	if err != nil {
		return err
	}
	return checkDuplicate(existing, file)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*models.File, error) {
	var (
		f    models.File
		size sql.NullInt64
	)
	if err := row.Scan(&f.FileID, &f.OwnerID, &f.Filename, &f.StorageKey,
		&f.WrappedDataKey, &f.Nonce, &f.ContentType, &size); err != nil {
		return nil, err
	}
	// Unknown size counts as zero.
	f.SizeBytes = size.Int64
	return &f, nil
}

// GetByID returns a record by file_id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, fileID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE file_id = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, fileID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", dbx.Classify(err))
	}
	return f, nil
}

// Delete removes a record by file_id. Exactly one row must be affected,
// otherwise common.ErrorNotFound is returned.
func (r *PostgresRepository) Delete(ctx context.Context, fileID string) error {
	query := `DELETE FROM files WHERE file_id = $1`

	result, err := r.db.ExecContext(ctx, query, fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", dbx.Classify(err))
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListByOwner returns all records of ownerID ordered by creation time.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = $1 ORDER BY created_at, file_id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", dbx.Classify(err))
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, dbx.Classify(err)
	}
	return result, nil
}

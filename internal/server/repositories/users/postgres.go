package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/dbx"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a user and returns it with the generated id.
func (r *PostgresRepository) Create(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`INSERT INTO users (username)
		 VALUES ($1)
		 RETURNING id, created_at
		 `

	user := &models.User{UserName: userName}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Classify(err))
	}

	return user, nil
}

// Delete removes the user row. common.ErrorNotFound when no row matched.
func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", dbx.Classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

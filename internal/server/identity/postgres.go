package identity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/dbx"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/repomanager"
)

// PostgresProvider keeps identities in the users and refresh_tokens tables.
type PostgresProvider struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

var _ Provider = (*PostgresProvider)(nil)

func NewPostgresProvider(db *sql.DB, rm repomanager.RepositoryManager) *PostgresProvider {
	return &PostgresProvider{db: db, repomanager: rm}
}

// InvalidateSessions deletes all refresh tokens of userID.
func (p *PostgresProvider) InvalidateSessions(ctx context.Context, userID string) error {
	if _, err := p.repomanager.RefreshTokens(p.db).DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// DeleteUser removes any remaining refresh tokens and then the users row,
// in one transaction.
func (p *PostgresProvider) DeleteUser(ctx context.Context, userID string) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := p.repomanager.RefreshTokens(tx).DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		if err := p.repomanager.Users(tx).Delete(ctx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// Package repomanager vends repository implementations bound to a DBTX and
// runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securestorage/internal/dbx"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/files"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Files(db dbx.DBTX) files.Repository
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

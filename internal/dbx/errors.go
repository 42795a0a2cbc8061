package dbx

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// Classify tags connection-level failures with common.ErrTransientIO so the
// retry layer can pick them up. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, common.ErrTransientIO) {
		return err
	}
	if IsTransient(err) {
		return fmt.Errorf("%w: %w", common.ErrTransientIO, err)
	}
	return err
}

// IsTransient reports whether err looks like a lost or timed out connection.
func IsTransient(err error) bool {
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err):
		return true
	}

	// SQLSTATE class 08: connection exception.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08")
	}
	return false
}

package main

import (
	"errors"

	"github.com/dmitrijs2005/securestorage/internal/common"
)

// formatCLIError turns service errors into messages for the terminal. A file
// that exists but belongs to someone else reads the same as a missing one.
func formatCLIError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errMissingToken):
		return err.Error()
	case errors.Is(err, common.ErrTokenExpired):
		return "session expired: issue a new token"
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid token"
	case errors.Is(err, common.ErrStorageLimitExceeded):
		var limitErr *common.StorageLimitExceededError
		if errors.As(err, &limitErr) {
			return limitErr.Error()
		}
		return err.Error()
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrorNotFound):
		return "file not found"
	case errors.Is(err, common.ErrAuthenticationFailed), errors.Is(err, common.ErrKeyUnwrapFailed):
		return "file failed integrity check: it is corrupted or was tampered with"
	case errors.Is(err, common.ErrPurgeIncomplete):
		return "some files could not be deleted, run the command again: " + err.Error()
	case errors.Is(err, common.ErrInconsistency):
		return "file content was deleted but its record remains, run delete again"
	case errors.Is(err, common.ErrTransientIO):
		return "storage is temporarily unavailable, try again"
	}
	return err.Error()
}

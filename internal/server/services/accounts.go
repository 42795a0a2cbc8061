package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/logging"
	"github.com/dmitrijs2005/securestorage/internal/server/identity"
)

// AccountRemoval reports what DeleteAccount did.
type AccountRemoval struct {
	Purge *PurgeReport
	Steps []StepOutcome
}

// AccountService removes a user's stored files and then their identity.
type AccountService struct {
	files    *FileService
	identity identity.Provider
	logger   logging.Logger
}

func NewAccountService(fs *FileService, provider identity.Provider, logger logging.Logger) *AccountService {
	return &AccountService{
		files:    fs,
		identity: provider,
		logger:   logger.With("module", "accounts"),
	}
}

// DeleteAccount purges every file of userID, then revokes sessions and
// deletes the identity record.
//
// An incomplete purge stops here with the identity intact, so the caller
// can retry. The identity steps are best-effort: their failures are
// recorded in Steps and logged but not returned.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) (*AccountRemoval, error) {
	report, err := s.files.PurgeAll(ctx, userID)
	removal := &AccountRemoval{Purge: report}
	if err != nil {
		return removal, fmt.Errorf("purge files: %w", err)
	}

	removal.Steps = append(removal.Steps,
		bestEffort(ctx, s.logger, "invalidate_sessions", func(ctx context.Context) error {
			return s.identity.InvalidateSessions(ctx, userID)
		}),
		bestEffort(ctx, s.logger, "delete_user", func(ctx context.Context) error {
			return s.identity.DeleteUser(ctx, userID)
		}),
	)

	s.logger.Info(ctx, "account removed", "user_id", userID, "files_deleted", len(report.Deleted))
	return removal, nil
}

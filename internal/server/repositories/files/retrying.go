package files

import (
	"context"

	"github.com/dmitrijs2005/securestorage/internal/retryx"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

// RetryingRepository decorates a Repository with a per-call deadline and a
// bounded retry on transient I/O. Every operation is safe to repeat: a Create
// whose earlier attempt already stored the record finds an identical row and
// succeeds, and a Delete that already happened reports common.ErrorNotFound,
// which callers treat as success.
type RetryingRepository struct {
	next   Repository
	policy retryx.Policy
}

var _ Repository = (*RetryingRepository)(nil)

func NewRetryingRepository(next Repository, policy retryx.Policy) *RetryingRepository {
	return &RetryingRepository{next: next, policy: policy}
}

func (r *RetryingRepository) Create(ctx context.Context, file *models.File) error {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.next.Create(ctx, file)
	})
}

func (r *RetryingRepository) GetByID(ctx context.Context, fileID string) (*models.File, error) {
	var f *models.File
	err := retryx.Do(ctx, r.policy, func(ctx context.Context) error {
		var err error
		f, err = r.next.GetByID(ctx, fileID)
		return err
	})
	return f, err
}

func (r *RetryingRepository) Delete(ctx context.Context, fileID string) error {
	return retryx.Do(ctx, r.policy, func(ctx context.Context) error {
		return r.next.Delete(ctx, fileID)
	})
}

func (r *RetryingRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	var list []*models.File
	err := retryx.Do(ctx, r.policy, func(ctx context.Context) error {
		var err error
		list, err = r.next.ListByOwner(ctx, ownerID)
		return err
	})
	return list, err
}

// Package quota admits or rejects uploads against a per-owner storage limit.
package quota

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

// Lister is the slice of the metadata store the accountant reads.
type Lister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
}

// Accountant sums an owner's recorded plaintext sizes and compares the
// result with a fixed limit.
//
// Usage is computed from a fresh listing on every call and nothing is
// locked between the check and the write that follows it. Two concurrent
// uploads by one owner can both be admitted against the same usage figure
// and together overshoot the limit. The limit is a soft cap.
type Accountant struct {
	files Lister
	limit int64
}

func NewAccountant(files Lister, limit int64) *Accountant {
	return &Accountant{files: files, limit: limit}
}

// Limit is the configured per-owner quota in bytes.
func (a *Accountant) Limit() int64 { return a.limit }

// UsedStorage sums size_bytes over ownerID's records. Unknown (zero) and
// negative sizes count as nothing.
func (a *Accountant) UsedStorage(ctx context.Context, ownerID string) (int64, error) {
	list, err := a.files.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}

	var used int64
	for _, f := range list {
		if f.SizeBytes > 0 {
			used += f.SizeBytes
		}
	}
	return used, nil
}

// CanAdmit reports whether incoming more bytes fit under the limit, along
// with the usage the decision was based on.
func (a *Accountant) CanAdmit(ctx context.Context, ownerID string, incoming int64) (bool, int64, error) {
	if incoming < 0 {
		return false, 0, fmt.Errorf("%w: negative upload size %d", common.ErrorValidation, incoming)
	}
	used, err := a.UsedStorage(ctx, ownerID)
	if err != nil {
		return false, 0, err
	}
	return used+incoming <= a.limit, used, nil
}

// Admit returns a *common.StorageLimitExceededError when incoming does not fit.
func (a *Accountant) Admit(ctx context.Context, ownerID string, incoming int64) error {
	ok, used, err := a.CanAdmit(ctx, ownerID, incoming)
	if err != nil {
		return err
	}
	if !ok {
		return &common.StorageLimitExceededError{Used: used, Incoming: incoming, Limit: a.limit}
	}
	return nil
}

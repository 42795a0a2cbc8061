package blobs

import (
	"context"

	"github.com/dmitrijs2005/securestorage/internal/retryx"
)

// RetryingStore decorates a Store with a per-call deadline and a bounded
// exponential retry on common.ErrTransientIO. Put and Delete are idempotent
// per key, so repeating them is safe.
type RetryingStore struct {
	next   Store
	policy retryx.Policy
}

var _ Store = (*RetryingStore)(nil)

func NewRetryingStore(next Store, policy retryx.Policy) *RetryingStore {
	return &RetryingStore{next: next, policy: policy}
}

func (s *RetryingStore) Put(ctx context.Context, key string, data []byte) error {
	return retryx.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.next.Put(ctx, key, data)
	})
}

func (s *RetryingStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := retryx.Do(ctx, s.policy, func(ctx context.Context) error {
		var err error
		data, err = s.next.Get(ctx, key)
		return err
	})
	return data, err
}

func (s *RetryingStore) Delete(ctx context.Context, key string) error {
	return retryx.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.next.Delete(ctx, key)
	})
}

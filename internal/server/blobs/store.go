// Package blobs stores encrypted file content under opaque keys.
package blobs

import "context"

// Store is an object store addressed by key. Implementations return
// common.ErrorNotFound for absent keys and tag connection or server side
// failures with common.ErrTransientIO.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes key. Backends that can tell an absent key apart report
	// common.ErrorNotFound; S3 does not and simply succeeds.
	Delete(ctx context.Context, key string) error
}

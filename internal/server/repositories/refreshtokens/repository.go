// Package refreshtokens manages the refresh tokens that keep a user's
// sessions alive.
package refreshtokens

import (
	"context"
	"time"
)

// Repository issues and revokes refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// DeleteByUser revokes every token of userID and reports how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

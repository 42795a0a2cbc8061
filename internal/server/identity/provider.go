// Package identity performs the account-side cleanup that follows a purge of
// a user's files.
package identity

import "context"

// Provider removes a user's sessions and identity record.
type Provider interface {
	// InvalidateSessions revokes every session of userID.
	InvalidateSessions(ctx context.Context, userID string) error
	// DeleteUser removes the identity record of userID.
	DeleteUser(ctx context.Context, userID string) error
}

// NoopProvider is used when identities live elsewhere and there is nothing
// local to clean up.
type NoopProvider struct{}

func (NoopProvider) InvalidateSessions(context.Context, string) error { return nil }
func (NoopProvider) DeleteUser(context.Context, string) error         { return nil }

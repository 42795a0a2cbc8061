package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls         []string
	invalidateErr error
	deleteErr     error
}

func (p *fakeProvider) InvalidateSessions(_ context.Context, userID string) error {
	p.calls = append(p.calls, "invalidate:"+userID)
	return p.invalidateErr
}

func (p *fakeProvider) DeleteUser(_ context.Context, userID string) error {
	p.calls = append(p.calls, "delete:"+userID)
	return p.deleteErr
}

func TestDeleteAccount_Success(t *testing.T) {
	f := newFixture(t, 200*mib)
	provider := &fakeProvider{}
	svc := NewAccountService(f.svc, provider, f.logger)

	f.upload(t, "u1", "a", []byte("a"))
	f.upload(t, "u1", "b", []byte("b"))

	removal, err := svc.DeleteAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, removal.Purge.Deleted, 2)
	assert.Equal(t, []string{"invalidate:u1", "delete:u1"}, provider.calls)

	require.Len(t, removal.Steps, 2)
	for _, s := range removal.Steps {
		assert.True(t, s.OK(), s.Name)
	}
	assert.Zero(t, f.store.Len())
}

func TestDeleteAccount_IncompletePurgeKeepsIdentity(t *testing.T) {
	f := newFixture(t, 200*mib)
	provider := &fakeProvider{}
	svc := NewAccountService(f.svc, provider, f.logger)

	rec := f.upload(t, "u1", "a", []byte("a"))
	f.store.deleteErr[rec.StorageKey] = errTransient

	removal, err := svc.DeleteAccount(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrPurgeIncomplete)
	require.NotNil(t, removal)
	assert.Len(t, removal.Purge.Failed, 1)
	assert.Empty(t, removal.Steps)
	assert.Empty(t, provider.calls, "identity must stay while files remain")
}

func TestDeleteAccount_IdentityFailuresAreBestEffort(t *testing.T) {
	f := newFixture(t, 200*mib)
	provider := &fakeProvider{invalidateErr: errors.New("idp down"), deleteErr: errors.New("idp down")}
	svc := NewAccountService(f.svc, provider, f.logger)

	removal, err := svc.DeleteAccount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"invalidate:u1", "delete:u1"}, provider.calls, "a failed step does not skip the next")

	require.Len(t, removal.Steps, 2)
	assert.Equal(t, "invalidate_sessions", removal.Steps[0].Name)
	assert.Equal(t, "delete_user", removal.Steps[1].Name)
	assert.False(t, removal.Steps[0].OK())
	assert.False(t, removal.Steps[1].OK())
	assert.True(t, f.logger.has("warn", "best-effort step failed"))
}

func TestDeleteAccount_InvalidUser(t *testing.T) {
	f := newFixture(t, 200*mib)
	provider := &fakeProvider{}
	svc := NewAccountService(f.svc, provider, f.logger)

	_, err := svc.DeleteAccount(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, provider.calls)
}

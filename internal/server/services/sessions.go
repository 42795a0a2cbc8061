package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securestorage/internal/common"
	"github.com/dmitrijs2005/securestorage/internal/server/auth"
	"github.com/dmitrijs2005/securestorage/internal/server/models"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securestorage/internal/server/repositories/users"
)

// ErrNoLocalIdentities is returned by SessionService operations that need the
// local users table when the service runs without one.
var ErrNoLocalIdentities = errors.New("local identities are not configured")

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService registers local users and issues the tokens that identify
// them to the file operations.
type SessionService struct {
	users                        users.Repository
	refreshTokens                refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewSessionService builds a SessionService. userRepo and tokenRepo may be
// nil when identities are managed elsewhere; Issue then returns an access
// token only.
func NewSessionService(userRepo users.Repository, tokenRepo refreshtokens.Repository, secret string, accessValidity, refreshValidity time.Duration) *SessionService {
	return &SessionService{
		users:                        userRepo,
		refreshTokens:                tokenRepo,
		jwtSecret:                    []byte(secret),
		accessTokenValidityDuration:  accessValidity,
		refreshTokenValidityDuration: refreshValidity,
	}
}

func (s *SessionService) Register(ctx context.Context, userName string) (*models.User, error) {
	if s.users == nil {
		return nil, ErrNoLocalIdentities
	}
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, fmt.Errorf("%w: empty user name", common.ErrorValidation)
	}

	user, err := s.users.Create(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Issue mints an access token for userID and, when a refresh token store is
// configured, a stored refresh token.
func (s *SessionService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	if err := validateOwner(userID); err != nil {
		return nil, err
	}

	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}
	pair := &TokenPair{AccessToken: accessToken}

	if s.refreshTokens == nil {
		return pair, nil
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if err := s.refreshTokens.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	pair.RefreshToken = refreshToken
	return pair, nil
}

// Authenticate returns the user ID carried by an access token.
func (s *SessionService) Authenticate(token string) (string, error) {
	if token == "" {
		return "", common.ErrorUnauthorized
	}
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return userID, nil
}

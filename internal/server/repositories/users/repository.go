// Package users declares the identity rows this service is allowed to touch.
package users

import (
	"context"

	"github.com/dmitrijs2005/securestorage/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userName string) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

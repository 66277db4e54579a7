// Package users provides read and write access to principals.
package users

import (
	"context"

	"github.com/dmitrijs2005/atskeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a principal and fills in its id and timestamps.
	// A duplicate email yields common.ErrConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindActiveByEmail matches email case-insensitively among active,
	// non-deleted principals. Returns common.ErrorNotFound otherwise.
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)

	// FindActiveByID returns the active, non-deleted principal with id.
	FindActiveByID(ctx context.Context, id int64) (*models.User, error)
}

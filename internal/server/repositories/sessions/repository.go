// Package sessions declares the contract for the server-side record of
// issued refresh tokens.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/server/models"
)

// Repository stores one row per issued refresh token. Every write is a
// single statement.
type Repository interface {
	// Create persists a new session. A duplicate token yields common.ErrConflict.
	Create(ctx context.Context, session *models.Session) error

	// FindValid returns the session for token if it is not revoked and
	// expires after now. Otherwise it returns common.ErrorNotFound.
	// Inside a transaction the row stays share-locked until commit.
	FindValid(ctx context.Context, token string, now time.Time) (*models.Session, error)

	// RevokeAllForUser marks every non-revoked session of userID as revoked
	// at now and returns how many rows changed.
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) (int64, error)

	// ListActiveByUser returns userID's valid sessions, newest first.
	ListActiveByUser(ctx context.Context, userID int64, now time.Time) ([]*models.Session, error)

	// DeleteExpired removes sessions that expired before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Package sessions provides a PostgreSQL-backed store for refresh-token
// sessions.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/dbx"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts session and fills in its id and created_at.
func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		session.UserID, session.Token, session.ExpiresAt,
		nullString(session.IPAddress), nullString(session.UserAgent),
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindValid looks up a usable session by its token string.
func (r *PostgresRepository) FindValid(ctx context.Context, token string, now time.Time) (*models.Session, error) {
	query := `
		SELECT id, user_id, token, expires_at, revoked, revoked_at, ip_address, user_agent, created_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked = FALSE AND expires_at > $2
		FOR SHARE
	`
	s, err := scanSession(r.db.QueryRowContext(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// RevokeAllForUser revokes every live session of userID in one statement.
// Already revoked rows keep their original revoked_at.
func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE user_id = $1 AND revoked = FALSE
	`
	res, err := r.db.ExecContext(ctx, query, userID, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// ListActiveByUser returns the sessions userID could still refresh with.
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID int64, now time.Time) ([]*models.Session, error) {
	query := `
		SELECT id, user_id, token, expires_at, revoked, revoked_at, ip_address, user_agent, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND revoked = FALSE AND expires_at > $2
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// DeleteExpired purges sessions whose expiry is before cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*models.Session, error) {
	var (
		s         models.Session
		revokedAt sql.NullTime
		ip        sql.NullString
		ua        sql.NullString
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Token, &s.ExpiresAt, &s.Revoked,
		&revokedAt, &ip, &ua, &s.CreatedAt); err != nil {
		return nil, err
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	s.IPAddress = ip.String
	s.UserAgent = ua.String
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

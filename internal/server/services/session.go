// Package services contains server-side business logic. This file implements
// SessionService, which handles login, access-token refresh against
// server-stored refresh tokens, and logout by bulk revocation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/dbx"
	"github.com/dmitrijs2005/atskeeper/internal/server/auth"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/atskeeper/internal/timex"
)

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

// ClientMeta describes the client a session was opened from.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             *models.User
}

// RefreshResult is returned by a successful Refresh. RefreshToken is the
// token the caller presented; it is not rotated.
type RefreshResult struct {
	AccessToken     string
	RefreshToken    string
	TokenType       string
	AccessExpiresAt time.Time
}

// SessionService provides the session lifecycle:
// - Login: verify credentials, mint a token pair, persist the refresh token
// - Refresh: trade a live refresh token for a new access token
// - Logout: revoke every refresh token of a principal
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.Hasher
	codec       *auth.Codec
	now         timex.Clock
}

// NewSessionService constructs a SessionService. A nil clock means time.Now.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.Hasher, codec *auth.Codec, clock timex.Clock) *SessionService {
	if clock == nil {
		clock = time.Now
	}
	return &SessionService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		codec:       codec,
		now:         clock,
	}
}

// Login authenticates email and secret. Unknown email, inactive or deleted
// principal, principal without a local password and wrong secret all yield
// common.ErrInvalidCredentials. On success exactly one session is persisted;
// if that write fails no tokens are returned.
func (s *SessionService) Login(ctx context.Context, email, secret string, meta ClientMeta) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	user, err := s.repomanager.Users(s.db).FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(secret)
			return nil, common.ErrInvalidCredentials
		}
		return nil, internal(err)
	}

	if !user.CanLogin() {
		s.hasher.VerifyDummy(secret)
		return nil, common.ErrInvalidCredentials
	}
	if !s.hasher.Verify(secret, *user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	access, accessExp, err := s.codec.IssueAccess(user)
	if err != nil {
		return nil, internal(err)
	}
	refresh, refreshExp, err := s.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, internal(err)
	}

	session := &models.Session{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: refreshExp,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, internal(err)
	}

	return &LoginResult{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        TokenTypeBearer,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
		User:             user,
	}, nil
}

// Refresh issues a new access token for a live refresh token. The session
// lookup and the principal check run in one transaction with the session row
// share-locked, so a concurrent Logout either happens entirely before (and
// the refresh fails) or entirely after (and the refresh succeeds).
// Any defect in the token, its session or its principal yields
// common.ErrInvalidToken.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}
	subject, err := claims.UserID()
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	var result *RefreshResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		session, err := s.repomanager.Sessions(tx).FindValid(ctx, refreshToken, s.now())
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return internal(err)
		}
		if session.UserID != subject {
			return common.ErrInvalidToken
		}

		user, err := s.repomanager.Users(tx).FindActiveByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return internal(err)
		}

		access, accessExp, err := s.codec.IssueAccess(user)
		if err != nil {
			return internal(err)
		}

		result = &RefreshResult{
			AccessToken:     access,
			RefreshToken:    refreshToken,
			TokenType:       TokenTypeBearer,
			AccessExpiresAt: accessExp,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrorInternal) {
			return nil, err
		}
		return nil, internal(err)
	}

	return result, nil
}

// Logout revokes every live refresh token of userID and returns how many
// were revoked. Calling it again returns 0. Access tokens already issued
// stay valid until they expire.
func (s *SessionService) Logout(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).RevokeAllForUser(ctx, userID, s.now())
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}

// RevokeUserSessions force-logs-out another principal on an admin's behalf.
func (s *SessionService) RevokeUserSessions(ctx context.Context, userID int64) (int64, error) {
	return s.Logout(ctx, userID)
}

// Sessions lists the live sessions of userID, newest first.
func (s *SessionService) Sessions(ctx context.Context, userID int64) ([]*models.Session, error) {
	list, err := s.repomanager.Sessions(s.db).ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, internal(err)
	}
	return list, nil
}

func internal(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}

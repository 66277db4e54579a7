package services

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/common"
	"github.com/dmitrijs2005/atskeeper/internal/dbx"
	"github.com/dmitrijs2005/atskeeper/internal/server/models"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/users"
)

type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// memUsers is an in-memory users.Repository.
type memUsers struct {
	mu      sync.Mutex
	byID    map[int64]*models.User
	findErr error
}

func newMemUsers(list ...*models.User) *memUsers {
	m := &memUsers{byID: map[int64]*models.User{}}
	for _, u := range list {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, common.ErrConflict
		}
	}
	u.ID = int64(len(m.byID) + 100)
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) FindActiveByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) && u.IsActive && u.DeletedAt == nil {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) FindActiveByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.byID[id]
	if !ok || !u.IsActive || u.DeletedAt != nil {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUsers) deactivate(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].IsActive = false
}

// memSessions is an in-memory sessions.Repository.
type memSessions struct {
	mu        sync.Mutex
	rows      []*models.Session
	nextID    int64
	createErr error
	findErr   error
	revokeErr error
	deleteErr error
}

func (m *memSessions) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, r := range m.rows {
		if r.Token == s.Token {
			return common.ErrConflict
		}
	}
	m.nextID++
	s.ID = m.nextID
	cp := *s
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memSessions) FindValid(_ context.Context, token string, now time.Time) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, r := range m.rows {
		if r.Token == token && r.IsValid(now) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memSessions) RevokeAllForUser(_ context.Context, userID int64, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return 0, m.revokeErr
	}
	var n int64
	for _, r := range m.rows {
		if r.UserID == userID && !r.Revoked {
			at := now
			r.Revoked = true
			r.RevokedAt = &at
			n++
		}
	}
	return n, nil
}

func (m *memSessions) ListActiveByUser(_ context.Context, userID int64, now time.Time) ([]*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Session
	for _, r := range slices.Backward(m.rows) {
		if r.UserID == userID && r.IsValid(now) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memSessions) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	before := len(m.rows)
	m.rows = slices.DeleteFunc(m.rows, func(r *models.Session) bool { return r.ExpiresAt.Before(cutoff) })
	return int64(before - len(m.rows)), nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memSessions) forUser(userID int64) []*models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Session
	for _, r := range m.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

type fakeRepoManager struct {
	u *memUsers
	s *memSessions
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessions.Repository        { return m.s }

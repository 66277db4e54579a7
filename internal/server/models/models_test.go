package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleHR.IsValid())
	assert.True(t, RoleInterviewer.IsValid())
	assert.False(t, Role("candidate").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" HR ")
	assert.True(t, ok)
	assert.Equal(t, RoleHR, r)

	_, ok = ParseRole("root")
	assert.False(t, ok)
}

func TestUser_CanLogin(t *testing.T) {
	hash := "$2a$04$abc"
	empty := ""
	now := time.Now()

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"active with hash", User{IsActive: true, PasswordHash: &hash}, true},
		{"inactive", User{IsActive: false, PasswordHash: &hash}, false},
		{"deleted", User{IsActive: true, PasswordHash: &hash, DeletedAt: &now}, false},
		{"external identity", User{IsActive: true}, false},
		{"empty hash", User{IsActive: true, PasswordHash: &empty}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.CanLogin())
		})
	}
}

func TestSession_IsValid(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&Session{ExpiresAt: now.Add(time.Second)}).IsValid(now))
	assert.False(t, (&Session{ExpiresAt: now}).IsValid(now), "expiry instant is already invalid")
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour), Revoked: true}).IsValid(now))
}

func TestUser_SummaryOmitsHash(t *testing.T) {
	hash := "secret-hash"
	u := &User{ID: 7, Email: "hr@x.com", UserName: "hr", Role: RoleHR, IsActive: true, PasswordHash: &hash}

	s := u.Summary()
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "hr@x.com", s.Email)
	assert.Equal(t, RoleHR, s.Role)
}

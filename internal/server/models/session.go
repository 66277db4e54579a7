package models

import "time"

// Session is a persisted refresh token. Exactly one Session exists per
// refresh token ever issued. Once Revoked is set it is never cleared.
type Session struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// IsValid reports whether the session can still be used to refresh at now.
func (s *Session) IsValid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}

// SessionInfo is the client-facing view of a Session. The token itself is
// never exposed.
type SessionInfo struct {
	ID        int64     `json:"id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

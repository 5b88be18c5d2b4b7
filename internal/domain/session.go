package domain

import "time"

// Role is the access level attached to a session
type Role string

const (
	// RoleMember is the single role assigned today. Role resolution is a
	// pluggable lookup on the auth service so a real authorization store can
	// replace the constant without touching callers.
	RoleMember Role = "member"
)

// Session is the server-validated proof of identity carried by a signed token.
// It is created on a successful OAuth callback and destroyed on sign-out or expiry.
type Session struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at the given instant
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Remaining returns the time left before expiry, zero if already expired
func (s *Session) Remaining(now time.Time) time.Duration {
	if s.Expired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

package session

import (
	"time"

	"ats-portal/internal/rbac"

	"github.com/google/uuid"
)

// Identity is the authenticated user a session belongs to.
type Identity struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       rbac.Role `json:"role"`
	Department string    `json:"department,omitempty"`
}

// Session is one logged-in identity. The role is fixed for its lifetime.
type Session struct {
	TokenHash string    `json:"token_hash"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Role implements rbac.Principal. A nil or expired session has no role.
func (s *Session) Role() (rbac.Role, bool) {
	if s == nil || s.ExpiredAt(time.Now()) || s.Identity.Role == "" {
		return "", false
	}
	return s.Identity.Role, true
}

// ExpiredAt reports whether the session is no longer valid at now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

package auth

import (
	"context"
	"fmt"

	"ats-portal/internal/session"
	apperrors "ats-portal/pkg/errors"
)

// ErrInvalidCredentials is returned for every authentication failure.
// Callers cannot tell an unknown user from a wrong password.
var ErrInvalidCredentials = fmt.Errorf("auth: %w", apperrors.ErrInvalidCredentials)

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
}

// Authenticator verifies credentials and returns the matching identity.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*session.Identity, error)
}

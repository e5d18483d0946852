package session

import "context"

// Store persists sessions keyed by token hash.
// Get returns ErrNotFound for absent or expired sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ats-portal/internal/rbac"
	"ats-portal/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager creates, resolves and destroys sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a session manager backed by store
func NewManager(store Store, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, ttl: ttl, logger: logger, now: time.Now}
}

// TTL returns the lifetime given to new sessions.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login starts a session for an already authenticated identity and returns
// the opaque token to hand to the client.
func (m *Manager) Login(ctx context.Context, id Identity) (string, *Session, error) {
	if _, err := rbac.ParseRole(string(id.Role)); err != nil {
		return "", nil, fmt.Errorf(errLoginInvalidRoleFmt, err)
	}
	if id.ID == uuid.Nil {
		id.ID = uuid.New()
	}

	raw, err := token.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf(errLoginTokenFmt, err)
	}

	now := m.now()
	s := &Session{
		TokenHash: token.Hash(raw),
		Identity:  id,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf(errLoginSaveFmt, err)
	}

	m.logger.Info("session started",
		zap.String("user_id", id.ID.String()),
		zap.String("role", id.Role.String()))
	return raw, s, nil
}

// Resolve maps a client token to its session. Any failure means no session;
// store errors other than a miss are logged.
func (m *Manager) Resolve(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	s, err := m.store.Get(ctx, token.Hash(raw))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("session lookup failed", zap.Error(err))
		}
		return nil, err
	}
	if s.ExpiredAt(m.now()) {
		return nil, ErrExpired
	}
	return s, nil
}

// Logout destroys the session behind raw. Unknown tokens are ignored.
func (m *Manager) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return m.store.Delete(ctx, token.Hash(raw))
}

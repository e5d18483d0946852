package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync"
	"time"

	"ats-portal/internal/guard"
	apperrors "ats-portal/pkg/errors"
	"ats-portal/pkg/token"

	"github.com/labstack/echo/v4"
)

const (
	csrfTokenBytes  = 32
	csrfTokenTTL    = 24 * time.Hour
	CSRFHeaderName  = "X-CSRF-Token"
	CSRFFormField   = "csrf_token"
	cleanupInterval = 1 * time.Hour
)

// CSRFToken represents a CSRF token with expiry
type CSRFToken struct {
	Token     string
	ExpiresAt time.Time
}

// CSRFMiddleware issues per-session tokens and checks them on state-changing
// requests. Tokens live in process memory keyed by session token hash.
type CSRFMiddleware struct {
	tokens  sync.Map // session token hash -> *CSRFToken
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewCSRFMiddleware creates a new CSRF middleware with background cleanup
func NewCSRFMiddleware(ctx context.Context) *CSRFMiddleware {
	cleanupCtx, cancel := context.WithCancel(ctx)
	m := &CSRFMiddleware{
		ctx:     cleanupCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Stop gracefully stops the cleanup goroutine
func (m *CSRFMiddleware) Stop() {
	m.cancel()
	<-m.stopped
}

func (m *CSRFMiddleware) cleanupLoop() {
	defer close(m.stopped)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpiredTokens()
		}
	}
}

// GetOrCreateToken returns the live token for a session, issuing one if needed
func (m *CSRFMiddleware) GetOrCreateToken(sessionHash string) (string, error) {
	if raw, ok := m.tokens.Load(sessionHash); ok {
		if t, ok := raw.(*CSRFToken); ok && time.Now().Before(t.ExpiresAt) {
			return t.Token, nil
		}
	}

	value, err := token.GenerateHex(csrfTokenBytes)
	if err != nil {
		return "", err
	}

	m.tokens.Store(sessionHash, &CSRFToken{
		Token:     value,
		ExpiresAt: time.Now().Add(csrfTokenTTL),
	})
	return value, nil
}

// Forget drops the token of a session that has ended
func (m *CSRFMiddleware) Forget(sessionHash string) {
	m.tokens.Delete(sessionHash)
}

// Middleware rejects unsafe requests from signed-in users whose token is
// missing or wrong. The token may come from the header or the form field.
func (m *CSRFMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			s := guard.SessionFrom(c)
			if s == nil {
				return next(c)
			}

			raw, ok := m.tokens.Load(s.TokenHash)
			if !ok {
				return apperrors.CSRF()
			}
			expected, ok := raw.(*CSRFToken)
			if !ok || time.Now().After(expected.ExpiresAt) {
				return apperrors.CSRF()
			}

			provided := c.Request().Header.Get(CSRFHeaderName)
			if provided == "" {
				provided = c.FormValue(CSRFFormField)
			}
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected.Token)) != 1 {
				return apperrors.CSRF()
			}

			return next(c)
		}
	}
}

// CleanupExpiredTokens removes expired tokens (called by background goroutine)
func (m *CSRFMiddleware) CleanupExpiredTokens() {
	now := time.Now()
	m.tokens.Range(func(key, value any) bool {
		if t, ok := value.(*CSRFToken); ok && now.After(t.ExpiresAt) {
			m.tokens.Delete(key)
		}
		return true
	})
}

package guard

import (
	"ats-portal/internal/session"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	ContextKeySession = "session"
	ContextKeyToken   = "session_token"
)

// LoadSession resolves the session cookie and stores the session on the
// context. Missing, unknown or expired sessions leave the request anonymous.
func LoadSession(manager *session.Manager, cookieName string, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			s, err := manager.Resolve(c.Request().Context(), cookie.Value)
			if err != nil {
				logger.Debug("session cookie rejected",
					zap.String("request_id", requestID(c)),
					zap.Error(err))
				return next(c)
			}

			c.Set(ContextKeySession, s)
			c.Set(ContextKeyToken, cookie.Value)
			return next(c)
		}
	}
}

// SessionFrom returns the request's session, or nil when anonymous.
func SessionFrom(c echo.Context) *session.Session {
	s, _ := c.Get(ContextKeySession).(*session.Session)
	return s
}

// TokenFrom returns the raw session token of the request, if any.
func TokenFrom(c echo.Context) string {
	t, _ := c.Get(ContextKeyToken).(string)
	return t
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

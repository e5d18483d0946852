package guard

import (
	"net/http"
	"net/url"
	"strings"

	"ats-portal/internal/rbac"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	DefaultLoginPath        = "/login"
	DefaultUnauthorizedPath = "/unauthorized"

	queryNext = "next"
	jsonError = "error"
)

// Recorder counts guard outcomes.
type Recorder interface {
	RecordGuard(outcome string)
}

// Options configures redirect targets and instrumentation.
type Options struct {
	LoginPath        string
	UnauthorizedPath string
	Logger           *zap.Logger
	Recorder         Recorder
}

// Guard turns Decide outcomes into echo responses.
type Guard struct {
	checker          *rbac.Checker
	loginPath        string
	unauthorizedPath string
	logger           *zap.Logger
	recorder         Recorder
}

// New creates a Guard. Empty paths fall back to /login and /unauthorized.
func New(checker *rbac.Checker, opts Options) *Guard {
	g := &Guard{
		checker:          checker,
		loginPath:        opts.LoginPath,
		unauthorizedPath: opts.UnauthorizedPath,
		logger:           opts.Logger,
		recorder:         opts.Recorder,
	}
	if g.loginPath == "" {
		g.loginPath = DefaultLoginPath
	}
	if g.unauthorizedPath == "" {
		g.unauthorizedPath = DefaultUnauthorizedPath
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Checker returns the checker the guard evaluates against.
func (g *Guard) Checker() *rbac.Checker {
	return g.checker
}

// Page guards a server-rendered page. Anonymous visitors are sent to the login
// page with the original path in ?next=, and denied users to the unauthorized page.
func (g *Guard) Page(required ...rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch g.evaluate(c, required) {
			case RedirectLogin:
				return c.Redirect(http.StatusSeeOther, LoginURL(g.loginPath, c.Request()))
			case RedirectUnauthorized:
				return c.Redirect(http.StatusSeeOther, g.unauthorizedPath)
			default:
				return next(c)
			}
		}
	}
}

// API guards a JSON endpoint with 401 and 403 responses instead of redirects.
func (g *Guard) API(required ...rbac.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch g.evaluate(c, required) {
			case RedirectLogin:
				return c.JSON(http.StatusUnauthorized, map[string]string{jsonError: "Unauthorized"})
			case RedirectUnauthorized:
				return c.JSON(http.StatusForbidden, map[string]string{jsonError: "Forbidden"})
			default:
				return next(c)
			}
		}
	}
}

func (g *Guard) evaluate(c echo.Context, required []rbac.Permission) Outcome {
	s := SessionFrom(c)
	outcome := Decide(g.checker, s, required...)

	if g.recorder != nil {
		g.recorder.RecordGuard(outcome.String())
	}
	if outcome != Render {
		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("path", c.Request().URL.Path),
			zap.String("outcome", outcome.String()),
		}
		if outcome == RedirectUnauthorized {
			role, _ := s.Role()
			fields = append(fields,
				zap.String("role", role.String()),
				zap.Stringers("required", required))
		}
		g.logger.Info("route guard blocked request", fields...)
	}
	return outcome
}

// LoginURL builds the login redirect. Only same-origin GET paths are carried
// over as ?next=.
func LoginURL(loginPath string, r *http.Request) string {
	if r.Method != http.MethodGet {
		return loginPath
	}
	target := r.URL.RequestURI()
	if !SafeNext(target) {
		return loginPath
	}
	return loginPath + "?" + url.Values{queryNext: {target}}.Encode()
}

// SafeNext reports whether target is a local path safe to redirect to after login.
// Browsers drop tabs and newlines and treat backslashes as slashes, so any of
// them anywhere in target is rejected.
func SafeNext(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	for _, r := range target {
		if r < 0x20 || r == 0x7f || r == '\\' {
			return false
		}
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}

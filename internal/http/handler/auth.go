package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ats-portal/internal/audit"
	"ats-portal/internal/auth"
	"ats-portal/internal/guard"
	"ats-portal/internal/session"
	"ats-portal/internal/view"
	"ats-portal/pkg/validator"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AssertionVerifier trades an upstream identity assertion for an Identity.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertion string) (*session.Identity, error)
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// LoginData feeds the login page.
type LoginData struct {
	Next  string
	Email string
}

type ExchangeRequest struct {
	Assertion string `json:"assertion"`
}

type ExchangeResponse struct {
	Identity  session.Identity `json:"identity"`
	ExpiresAt time.Time        `json:"expires_at"`
}

type AuthHandler struct {
	sessions      *session.Manager
	authenticator auth.Authenticator
	exchange      AssertionVerifier
	csrf          CSRFTokens
	validator     *validator.Validator
	pages         *PageHandler
	cookie        CookieConfig
	audit         *audit.Logger
	logger        *zap.Logger
}

// AuthHandlerDeps groups the collaborators of AuthHandler. Authenticator and
// Exchange are optional; a nil one disables that sign-in method.
type AuthHandlerDeps struct {
	Sessions      *session.Manager
	Authenticator auth.Authenticator
	Exchange      AssertionVerifier
	CSRF          CSRFTokens
	Validator     *validator.Validator
	Pages         *PageHandler
	Cookie        CookieConfig
	Audit         *audit.Logger
	Logger        *zap.Logger
}

func NewAuthHandler(deps AuthHandlerDeps) *AuthHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	auditLog := deps.Audit
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}
	return &AuthHandler{
		sessions:      deps.Sessions,
		authenticator: deps.Authenticator,
		exchange:      deps.Exchange,
		csrf:          deps.CSRF,
		validator:     deps.Validator,
		pages:         deps.Pages,
		cookie:        deps.Cookie,
		audit:         auditLog,
		logger:        logger,
	}
}

// LoginForm renders the sign-in page. Signed-in users go straight home.
func (h *AuthHandler) LoginForm(c echo.Context) error {
	if guard.SessionFrom(c) != nil {
		return c.Redirect(http.StatusSeeOther, homePath)
	}
	return h.pages.Render(c, http.StatusOK, view.PageLogin, "Sign in", LoginData{
		Next: safeNextOrEmpty(c.QueryParam(formFieldNext)),
	})
}

// Login checks form credentials, starts a session and redirects to the
// requested page.
func (h *AuthHandler) Login(c echo.Context) error {
	if h.authenticator == nil {
		return h.loginFailed(c, http.StatusNotFound, msgLoginUnavailable, LoginData{})
	}

	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return h.loginFailed(c, http.StatusBadRequest, msgInvalidRequestBody, LoginData{})
	}
	next := safeNextOrEmpty(c.FormValue(formFieldNext))
	data := LoginData{Next: next, Email: strings.TrimSpace(creds.Email)}

	if err := h.validator.Struct(creds); err != nil {
		h.audit.LogFromContext(c, audit.ActionLogin, audit.StatusFailure, nil, "", auditReasonMalformed)
		return h.loginFailed(c, http.StatusUnauthorized, msgInvalidCredentials, data)
	}

	identity, err := h.authenticator.Authenticate(c.Request().Context(), creds)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.Error("authenticator failed", zap.Error(err))
		}
		h.audit.LogFromContext(c, audit.ActionLogin, audit.StatusFailure, nil, "", auditReasonCredentials)
		return h.loginFailed(c, http.StatusUnauthorized, msgInvalidCredentials, data)
	}

	if _, err := h.startSession(c, *identity); err != nil {
		return err
	}
	h.audit.LogFromContext(c, audit.ActionLogin, audit.StatusSuccess, &identity.ID, identity.Role.String(), "")

	if next == "" {
		next = homePath
	}
	return c.Redirect(http.StatusSeeOther, next)
}

// Exchange accepts an identity assertion from the upstream authentication
// service, in the JSON body or as a bearer token, and starts a session.
func (h *AuthHandler) Exchange(c echo.Context) error {
	if h.exchange == nil {
		return respondError(c, http.StatusNotFound, msgExchangeUnavailable)
	}

	assertion, err := assertionFrom(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	identity, err := h.exchange.Verify(c.Request().Context(), assertion)
	if err != nil {
		h.logger.Info("identity assertion rejected", zap.Error(err))
		h.audit.LogFromContext(c, audit.ActionExchange, audit.StatusFailure, nil, "", auditReasonAssertion)
		return respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
	}

	s, err := h.startSession(c, *identity)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, msgSessionStartFail)
	}
	h.audit.LogFromContext(c, audit.ActionExchange, audit.StatusSuccess, &identity.ID, identity.Role.String(), "")

	return c.JSON(http.StatusOK, ExchangeResponse{
		Identity:  s.Identity,
		ExpiresAt: s.ExpiresAt,
	})
}

// Logout ends the session, if any, and returns to the login page.
func (h *AuthHandler) Logout(c echo.Context) error {
	if s := guard.SessionFrom(c); s != nil {
		if err := h.sessions.Logout(c.Request().Context(), guard.TokenFrom(c)); err != nil {
			h.logger.Error("session delete failed", zap.Error(err))
		}
		if h.csrf != nil {
			h.csrf.Forget(s.TokenHash)
		}
		h.audit.LogFromContext(c, audit.ActionLogout, audit.StatusSuccess, &s.Identity.ID, s.Identity.Role.String(), "")
	}
	h.clearCookie(c)
	return c.Redirect(http.StatusSeeOther, loginPath)
}

func (h *AuthHandler) startSession(c echo.Context, identity session.Identity) (*session.Session, error) {
	raw, s, err := h.sessions.Login(c.Request().Context(), identity)
	if err != nil {
		h.logger.Error("session start failed", zap.Error(err))
		return nil, err
	}
	h.setCookie(c, raw, s.ExpiresAt)
	return s, nil
}

func (h *AuthHandler) loginFailed(c echo.Context, status int, flash string, data LoginData) error {
	page := view.NewPage(h.pages.checker, nil, loginPath, "Sign in").With(data)
	page.Flash = flash
	return c.Render(status, view.PageLogin, page)
}

func (h *AuthHandler) setCookie(c echo.Context, value string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     homePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     homePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func safeNextOrEmpty(next string) string {
	if next == "" || !guard.SafeNext(next) {
		return ""
	}
	return next
}

package handler

import (
	"net/http"

	"ats-portal/internal/guard"
	"ats-portal/internal/rbac"
	"ats-portal/internal/session"
	"ats-portal/internal/view"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CSRFTokens issues the per-session token embedded in rendered forms.
type CSRFTokens interface {
	GetOrCreateToken(sessionHash string) (string, error)
	Forget(sessionHash string)
}

// UserLister lists the identities shown on the user management page.
type UserLister interface {
	Identities() []session.Identity
}

// RolesData feeds the role permissions page.
type RolesData struct {
	Roles  []rbac.Role
	Matrix []rbac.MatrixRow
}

type PageHandler struct {
	checker *rbac.Checker
	csrf    CSRFTokens
	users   UserLister
	logger  *zap.Logger
}

// NewPageHandler creates the page handler. users may be nil when no local
// directory is configured.
func NewPageHandler(checker *rbac.Checker, csrf CSRFTokens, users UserLister, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{checker: checker, csrf: csrf, users: users, logger: logger}
}

func (h *PageHandler) Dashboard(c echo.Context) error {
	return h.Render(c, http.StatusOK, view.PageDashboard, "Dashboard", nil)
}

func (h *PageHandler) Candidates(c echo.Context) error {
	return h.Render(c, http.StatusOK, view.PageCandidates, "Candidates", nil)
}

func (h *PageHandler) Jobs(c echo.Context) error {
	return h.Render(c, http.StatusOK, view.PageJobs, "Jobs", nil)
}

func (h *PageHandler) Workflow(c echo.Context) error {
	return h.Render(c, http.StatusOK, view.PageWorkflow, "Workflow", nil)
}

func (h *PageHandler) Reports(c echo.Context) error {
	return h.Render(c, http.StatusOK, view.PageReports, "Reports", nil)
}

func (h *PageHandler) Users(c echo.Context) error {
	var users []session.Identity
	if h.users != nil {
		users = h.users.Identities()
	}
	return h.Render(c, http.StatusOK, view.PageUsers, "User Management", users)
}

func (h *PageHandler) Roles(c echo.Context) error {
	table := h.checker.Table()
	return h.Render(c, http.StatusOK, view.PageRoles, "Role Management", RolesData{
		Roles:  table.Roles(),
		Matrix: table.Matrix(),
	})
}

func (h *PageHandler) Settings(c echo.Context) error {
	return h.Render(c, http.StatusOK, view.PageSettings, "Settings", nil)
}

func (h *PageHandler) Unauthorized(c echo.Context) error {
	return h.Render(c, http.StatusForbidden, view.PageUnauthorized, "Access denied", nil)
}

func (h *PageHandler) NotFound(c echo.Context) error {
	return h.Render(c, http.StatusNotFound, view.PageNotFound, "Page not found", nil)
}

// Render executes a page with the layout data of the current request.
// Signed-in pages carry the session's CSRF token for the logout form.
func (h *PageHandler) Render(c echo.Context, status int, name, title string, data any) error {
	s := guard.SessionFrom(c)
	page := view.NewPage(h.checker, s, c.Request().URL.Path, title).With(data)

	if s != nil && h.csrf != nil {
		csrfToken, err := h.csrf.GetOrCreateToken(s.TokenHash)
		if err != nil {
			h.logger.Error("csrf token issue failed",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err))
			return err
		}
		page.CSRFToken = csrfToken
	}

	return c.Render(status, name, page)
}

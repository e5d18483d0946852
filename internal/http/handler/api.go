package handler

import (
	"net/http"
	"time"

	"ats-portal/internal/guard"
	"ats-portal/internal/rbac"
	"ats-portal/internal/session"

	"github.com/labstack/echo/v4"
)

type MeResponse struct {
	Identity    session.Identity  `json:"identity"`
	ExpiresAt   time.Time         `json:"expires_at"`
	Permissions []rbac.Permission `json:"permissions"`
}

type TableResponse struct {
	Roles []rbac.Entry `json:"roles"`
}

type CheckResponse struct {
	Role    rbac.Role       `json:"role,omitempty"`
	Allowed bool            `json:"allowed"`
	Query   rbac.Permission `json:"permission"`
}

type APIHandler struct {
	checker *rbac.Checker
}

func NewAPIHandler(checker *rbac.Checker) *APIHandler {
	return &APIHandler{checker: checker}
}

// Me returns the signed-in identity and every permission its role holds.
func (h *APIHandler) Me(c echo.Context) error {
	s := guard.SessionFrom(c)
	if s == nil {
		return respondError(c, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	}
	return c.JSON(http.StatusOK, MeResponse{
		Identity:    s.Identity,
		ExpiresAt:   s.ExpiresAt,
		Permissions: h.checker.Granted(s),
	})
}

// Table exposes the whole permission table for audit.
func (h *APIHandler) Table(c echo.Context) error {
	return c.JSON(http.StatusOK, TableResponse{Roles: h.checker.Table().Entries()})
}

// Check answers a single permission question for the current session.
// The route sits behind the API guard, so anonymous callers get 401 first.
func (h *APIHandler) Check(c echo.Context) error {
	perm, err := rbac.NewPermission(c.QueryParam("action"), c.QueryParam("subject"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgInvalidPermissionQuery)
	}

	s := guard.SessionFrom(c)
	role, _ := s.Role()
	return c.JSON(http.StatusOK, CheckResponse{
		Role:    role,
		Allowed: h.checker.HasPermission(s, perm.Action, perm.Subject),
		Query:   perm,
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ats-portal/internal/guard"
	"ats-portal/internal/rbac"
	"ats-portal/internal/rbac/presets"
	"ats-portal/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIContext(target string, s *session.Session) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if s != nil {
		c.Set(guard.ContextKeySession, s)
	}
	return c, rec
}

func sessionFor(role rbac.Role) *session.Session {
	now := time.Now()
	return &session.Session{
		TokenHash: "hash",
		Identity:  session.Identity{Name: "Test", Email: "test@example.com", Role: role},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestAPICheck(t *testing.T) {
	h := NewAPIHandler(rbac.New(rbac.MustNewTable(presets.ATS())))

	tests := []struct {
		name     string
		target   string
		session  *session.Session
		wantCode int
		allowed  bool
	}{
		{"Recruiter may create candidates", "/api/rbac/check?action=create&subject=candidates", sessionFor(rbac.RoleRecruiter), http.StatusOK, true},
		{"Recruiter may not delete candidates", "/api/rbac/check?action=delete&subject=candidates", sessionFor(rbac.RoleRecruiter), http.StatusOK, false},
		{"Anonymous holds nothing", "/api/rbac/check?action=read&subject=jobs", nil, http.StatusOK, false},
		{"Unknown action", "/api/rbac/check?action=approve&subject=jobs", sessionFor(rbac.RoleAdmin), http.StatusBadRequest, false},
		{"Missing subject", "/api/rbac/check?action=read", sessionFor(rbac.RoleAdmin), http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAPIContext(tt.target, tt.session)
			require.NoError(t, h.Check(c))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			var resp CheckResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.allowed, resp.Allowed)
		})
	}
}

func TestAPIMe(t *testing.T) {
	h := NewAPIHandler(rbac.New(rbac.MustNewTable(presets.ATS())))

	c, rec := newAPIContext("/api/me", nil)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newAPIContext("/api/me", sessionFor(rbac.RoleViewer))
	require.NoError(t, h.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Permissions, 3)
}

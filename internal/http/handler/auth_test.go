package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ats-portal/internal/auth"
	"ats-portal/internal/rbac"
	"ats-portal/internal/session"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeVerifier struct {
	want     string
	identity session.Identity
}

func (f *fakeVerifier) Verify(_ context.Context, assertion string) (*session.Identity, error) {
	if assertion != f.want {
		return nil, auth.ErrInvalidCredentials
	}
	id := f.identity
	return &id, nil
}

func newExchangeHandler(store session.Store) *AuthHandler {
	return NewAuthHandler(AuthHandlerDeps{
		Sessions: session.NewManager(store, time.Hour, zap.NewNop()),
		Exchange: &fakeVerifier{
			want: "signed-assertion",
			identity: session.Identity{
				ID:    uuid.New(),
				Name:  "Hana",
				Email: "hana@example.com",
				Role:  rbac.RoleHiringManager,
			},
		},
		Cookie: CookieConfig{Name: "ats_session", Secure: true},
	})
}

func TestExchange(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		bearer      string
		wantCode    int
	}{
		{"JSON body", `{"assertion":"signed-assertion"}`, echo.MIMEApplicationJSON, "", http.StatusOK},
		{"Bearer header", "", "", "signed-assertion", http.StatusOK},
		{"Wrong assertion", `{"assertion":"forged"}`, echo.MIMEApplicationJSON, "", http.StatusUnauthorized},
		{"Empty assertion", `{"assertion":"  "}`, echo.MIMEApplicationJSON, "", http.StatusBadRequest},
		{"Unknown field", `{"assertion":"signed-assertion","role":"admin"}`, echo.MIMEApplicationJSON, "", http.StatusBadRequest},
		{"JSON with charset", `{"assertion":"signed-assertion"}`, "application/json; charset=utf-8", "", http.StatusOK},
		{"Trailing data", `{"assertion":"signed-assertion"} {}`, echo.MIMEApplicationJSON, "", http.StatusBadRequest},
		{"Oversized body", `{"assertion":"` + strings.Repeat("a", int(maxExchangeBodyBytes)) + `"}`, echo.MIMEApplicationJSON, "", http.StatusBadRequest},
		{"JSON-like content type", `{"assertion":"signed-assertion"}`, "application/jsonp", "", http.StatusUnsupportedMediaType},
		{"Wrong content type", `assertion=signed-assertion`, echo.MIMEApplicationForm, "", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			h := newExchangeHandler(store)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/auth/exchange", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set(echo.HeaderContentType, tt.contentType)
			}
			if tt.bearer != "" {
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.bearer)
			}
			rec := httptest.NewRecorder()

			require.NoError(t, h.Exchange(e.NewContext(req, rec)))
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode != http.StatusOK {
				assert.Zero(t, store.Len())
				return
			}

			var resp ExchangeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, rbac.RoleHiringManager, resp.Identity.Role)
			assert.Equal(t, 1, store.Len())

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "ats_session", cookies[0].Name)
			assert.True(t, cookies[0].HttpOnly)
			assert.True(t, cookies[0].Secure)
			assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		})
	}
}

func TestExchangeDisabled(t *testing.T) {
	h := NewAuthHandler(AuthHandlerDeps{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Exchange(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSafeNextOrEmpty(t *testing.T) {
	assert.Equal(t, "/jobs?page=2", safeNextOrEmpty("/jobs?page=2"))
	assert.Empty(t, safeNextOrEmpty(""))
	assert.Empty(t, safeNextOrEmpty("https://evil.example.com"))
	assert.Empty(t, safeNextOrEmpty("//evil.example.com"))
}

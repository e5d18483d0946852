package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"ats-portal/internal/auth"
	"ats-portal/internal/config"
	"ats-portal/internal/http/handler"
	"ats-portal/internal/http/middleware"
	"ats-portal/internal/rbac"
	"ats-portal/internal/rbac/presets"
	"ats-portal/internal/session"
	"ats-portal/internal/view"
	"ats-portal/pkg/metrics"
	"ats-portal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testCookie   = "ats_session"
	testPassword = "correct-horse-battery"
)

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([0-9a-f]+)">`)

type testServer struct {
	handler http.Handler
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := password.HashWithCost(testPassword, password.MinCost)
	require.NoError(t, err)
	directory, err := auth.NewDirectory([]auth.DirectoryEntry{
		{Email: "ada@example.com", Name: "Ada", Role: "admin", PasswordHash: hash},
		{Email: "rita@example.com", Name: "Rita", Role: "recruiter", PasswordHash: hash},
		{Email: "vic@example.com", Name: "Vic", Role: "viewer", PasswordHash: hash},
	}, auth.WithDummyCost(password.MinCost))
	require.NoError(t, err)

	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	csrf := middleware.NewCSRFMiddleware(ctx)
	t.Cleanup(func() {
		csrf.Stop()
		cancel()
	})

	m := metrics.New()
	logger := zap.NewNop()
	srv := NewServer(&ServerDependencies{
		Config: &config.Config{
			Server:  config.ServerConfig{Port: "0", ReadTimeout: time.Second, WriteTimeout: time.Second},
			Session: config.SessionConfig{CookieName: testCookie, TTL: time.Hour, Store: config.StoreMemory},
		},
		Logger:         logger,
		Checker:        rbac.New(rbac.MustNewTable(presets.ATS())),
		Sessions:       session.NewManager(session.NewMemoryStore(), time.Hour, logger),
		Authenticator:  directory,
		Users:          directory,
		CSRFMiddleware: csrf,
		Metrics:        m,
		Renderer:       renderer,
		Validator:      auth.NewValidator(),
	})
	return &testServer{handler: srv.Handler(), metrics: m}
}

func (s *testServer) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil), cookie)
}

func (s *testServer) postForm(path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, cookie)
}

func (s *testServer) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	rec := s.postForm("/login", url.Values{"email": {email}, "password": {testPassword}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatalf("no session cookie set for %s", email)
	return nil
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServerAnonymousIsSentToLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/candidates", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fcandidates", rec.Header().Get("Location"))

	rec = s.get("/login?next=%2Fcandidates", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="/candidates"`)
}

func TestServerLoginRedirectsToNext(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm("/login", url.Values{
		"email":    {"rita@example.com"},
		"password": {testPassword},
		"next":     {"/candidates"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/candidates", rec.Header().Get("Location"))

	rec = s.postForm("/login", url.Values{
		"email":    {"rita@example.com"},
		"password": {testPassword},
		"next":     {"//evil.example.com"},
	}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestServerLoginIgnoresNextWithControlCharacters(t *testing.T) {
	s := newTestServer(t)

	for _, next := range []string{"/\t/evil.example.com", "/\n/evil.example.com", "/\\/evil.example.com"} {
		rec := s.postForm("/login", url.Values{
			"email":    {"rita@example.com"},
			"password": {testPassword},
			"next":     {next},
		}, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, next)
		assert.Equal(t, "/", rec.Header().Get("Location"), next)
	}
}

func TestServerLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm("/login", url.Values{"email": {"rita@example.com"}, "password": {"not-the-password"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	assert.Empty(t, rec.Result().Cookies())
}

func TestServerViewerIsSentToUnauthorized(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "vic@example.com")

	rec := s.get("/candidates", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.get("/settings", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/unauthorized", rec.Header().Get("Location"))

	rec = s.get("/unauthorized", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	snap := s.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.GuardOutcomes["redirect_unauthorized"])
}

func TestServerAdminReachesEveryPage(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "ada@example.com")

	for _, path := range []string{"/", "/candidates", "/jobs", "/workflow", "/reports", "/users", "/roles", "/settings"} {
		rec := s.get(path, cookie)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestServerRecruiterCandidateActions(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "rita@example.com")

	rec := s.get("/candidates", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-action="create-candidate"`)
	assert.NotContains(t, body, `data-action="delete-candidate"`)
}

func TestServerLogoutRequiresCSRF(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "rita@example.com")

	rec := s.postForm("/logout", url.Values{}, cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), s.metrics.Snapshot().StatusCodes[http.StatusForbidden])

	page := s.get("/", cookie)
	require.Equal(t, http.StatusOK, page.Code)
	match := csrfMeta.FindStringSubmatch(page.Body.String())
	require.Len(t, match, 2)

	rec = s.postForm("/logout", url.Values{middleware.CSRFFormField: {match[1]}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = s.get("/", cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2F", rec.Header().Get("Location"))
}

func TestServerAPI(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.get("/api/rbac/check?action=read&subject=jobs", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := s.login(t, "vic@example.com")

	rec = s.get("/api/me", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var me handler.MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, rbac.RoleViewer, me.Identity.Role)
	assert.ElementsMatch(t, []rbac.Permission{
		rbac.Can(rbac.ActionRead, rbac.SubjectCandidates),
		rbac.Can(rbac.ActionRead, rbac.SubjectJobs),
		rbac.Can(rbac.ActionRead, rbac.SubjectInterviews),
	}, me.Permissions)

	rec = s.get("/api/rbac/check?action=update&subject=candidates", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var check handler.CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.False(t, check.Allowed)

	rec = s.get("/api/rbac/check?action=read&subject=jobs", cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.True(t, check.Allowed)

	rec = s.get("/api/rbac/check?action=approve&subject=jobs", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.get("/api/rbac/table", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.get("/metrics", cookie)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServerTableForAdmin(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "ada@example.com")

	rec := s.get("/api/rbac/table", cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	var table handler.TableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	require.Len(t, table.Roles, 4)
	assert.Equal(t, rbac.RoleAdmin, table.Roles[0].Role)
	assert.Len(t, table.Roles[0].Permissions, len(rbac.Actions())*len(rbac.Subjects()))
}

func TestServerNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/no-such-page", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = s.get("/api/no-such-endpoint", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id"`)
}

func TestServerExchangeDisabled(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", strings.NewReader(`{"assertion":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := s.do(req, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

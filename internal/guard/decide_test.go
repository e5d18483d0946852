package guard

import (
	"testing"

	"ats-portal/internal/rbac"
	"ats-portal/internal/rbac/presets"
	"ats-portal/internal/session"

	"github.com/stretchr/testify/assert"
)

func newChecker(t *testing.T) *rbac.Checker {
	t.Helper()
	return rbac.New(rbac.MustNewTable(presets.ATS()))
}

func TestDecide(t *testing.T) {
	checker := newChecker(t)
	viewer := rbac.RolePrincipal(rbac.RoleViewer)
	var anonymous *session.Session

	readCandidates := rbac.Can(rbac.ActionRead, rbac.SubjectCandidates)
	updateCandidates := rbac.Can(rbac.ActionUpdate, rbac.SubjectCandidates)

	tests := []struct {
		name      string
		principal rbac.Principal
		required  []rbac.Permission
		expected  Outcome
	}{
		{"Anonymous with nothing required", nil, nil, RedirectLogin},
		{"Typed nil session", anonymous, []rbac.Permission{readCandidates}, RedirectLogin},
		{"Anonymous is sent to login before permissions are considered", nil, []rbac.Permission{updateCandidates}, RedirectLogin},
		{"Authenticated with empty list", viewer, nil, Render},
		{"Single granted permission", viewer, []rbac.Permission{readCandidates}, Render},
		{"Conjunction with one missing", viewer, []rbac.Permission{readCandidates, updateCandidates}, RedirectUnauthorized},
		{"Unknown role is authenticated but denied", rbac.RolePrincipal("owner"), []rbac.Permission{readCandidates}, RedirectUnauthorized},
		{"Unknown role with empty list renders", rbac.RolePrincipal("owner"), nil, Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(checker, tt.principal, tt.required...))
		})
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	checker := newChecker(t)
	recruiter := rbac.RolePrincipal(rbac.RoleRecruiter)
	req := rbac.Can(rbac.ActionDelete, rbac.SubjectCandidates)

	first := Decide(checker, recruiter, req)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Decide(checker, recruiter, req))
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "redirect_login", RedirectLogin.String())
	assert.Equal(t, "redirect_unauthorized", RedirectUnauthorized.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestAnonymousGoesToLoginNotUnauthorized(t *testing.T) {
	checker := newChecker(t)
	got := Decide(checker, nil, rbac.Can(rbac.ActionRead, rbac.SubjectCandidates))
	assert.Equal(t, RedirectLogin, got)
}

func TestAdminAlwaysRenders(t *testing.T) {
	checker := newChecker(t)
	admin := rbac.RolePrincipal(rbac.RoleAdmin)

	var all []rbac.Permission
	for _, s := range rbac.Subjects() {
		for _, a := range rbac.Actions() {
			p := rbac.Can(a, s)
			all = append(all, p)
			assert.Equal(t, Render, Decide(checker, admin, p), p.String())
		}
	}

	for i := range all {
		assert.Equal(t, Render, Decide(checker, admin, all[:i+1]...))
	}
}

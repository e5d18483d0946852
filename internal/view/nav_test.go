package view

import (
	"testing"

	"ats-portal/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func labels(sections []NavSection) []string {
	var out []string
	for _, s := range sections {
		for _, item := range s.Items {
			out = append(out, item.Label)
		}
	}
	return out
}

func TestNavPerRole(t *testing.T) {
	checker := newChecker(t)

	tests := []struct {
		role     rbac.Role
		expected []string
	}{
		{rbac.RoleAdmin, []string{"Dashboard", "Candidates", "Jobs", "Workflow", "Reports", "User Management", "Role Management", "Settings"}},
		{rbac.RoleRecruiter, []string{"Dashboard", "Candidates", "Jobs", "Workflow", "Reports", "User Management", "Role Management"}},
		{rbac.RoleHiringManager, []string{"Dashboard", "Candidates", "Jobs", "Workflow", "Reports", "User Management", "Role Management"}},
		{rbac.RoleViewer, []string{"Dashboard", "Candidates", "Jobs", "Workflow", "Reports"}},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			nav := Nav(NewGate(checker, rbac.RolePrincipal(tt.role)), "/")
			assert.Equal(t, tt.expected, labels(nav))
		})
	}
}

func TestNavDropsEmptySections(t *testing.T) {
	nav := Nav(NewGate(newChecker(t), rbac.RolePrincipal(rbac.RoleViewer)), "/jobs")

	assert.Len(t, nav, 1)
	for _, item := range nav[0].Items {
		assert.Equal(t, item.Href == "/jobs", item.Active, item.Label)
	}
}

func TestNavAnonymousSeesOnlyUngatedItems(t *testing.T) {
	nav := Nav(NewGate(newChecker(t), nil), "/")
	assert.Equal(t, []string{"Dashboard"}, labels(nav))
}

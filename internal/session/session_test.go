package session

import (
	"testing"
	"time"

	"ats-portal/internal/rbac"

	"github.com/stretchr/testify/assert"
)

func TestSessionRole(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Second)

	tests := []struct {
		name     string
		session  *Session
		expected rbac.Role
		ok       bool
	}{
		{"Nil session", nil, "", false},
		{"Active session", &Session{Identity: Identity{Role: rbac.RoleRecruiter}, ExpiresAt: future}, rbac.RoleRecruiter, true},
		{"Expired session", &Session{Identity: Identity{Role: rbac.RoleAdmin}, ExpiresAt: past}, "", false},
		{"Missing role", &Session{ExpiresAt: future}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := tt.session.Role()
			assert.Equal(t, tt.expected, role)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestExpiredSessionHoldsNothing(t *testing.T) {
	checker := rbac.New(rbac.MustNewTable(rbac.Config{
		Roles:  []rbac.Role{rbac.RoleAdmin},
		Grants: map[rbac.Role][]rbac.Permission{rbac.RoleAdmin: {rbac.Can(rbac.ActionRead, rbac.SubjectUsers)}},
	}))

	expired := &Session{Identity: Identity{Role: rbac.RoleAdmin}, ExpiresAt: time.Now().Add(-time.Minute)}
	assert.False(t, checker.HasPermission(expired, rbac.ActionRead, rbac.SubjectUsers))

	var none *Session
	assert.False(t, checker.HasPermission(none, rbac.ActionRead, rbac.SubjectUsers))
}

package rbac_test

import (
	"errors"
	"strings"
	"testing"

	"ats-portal/internal/rbac"
)

func validBaseConfig() rbac.Config {
	return rbac.Config{
		Roles: []rbac.Role{rbac.RoleAdmin, rbac.RoleViewer},
		Grants: map[rbac.Role][]rbac.Permission{
			rbac.RoleAdmin:  {rbac.Can(rbac.ActionRead, rbac.SubjectJobs), rbac.Can(rbac.ActionDelete, rbac.SubjectJobs)},
			rbac.RoleViewer: {rbac.Can(rbac.ActionRead, rbac.SubjectJobs)},
		},
	}
}

func TestValidateBaseConfig(t *testing.T) {
	cfg := validBaseConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
}

func TestValidateEmptyRoles(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Roles = nil
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "roles must not be empty") {
		t.Fatalf("expected empty roles error, got: %v", err)
	}
}

func TestValidateDuplicateRole(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Roles = append(cfg.Roles, rbac.RoleAdmin)
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate role") {
		t.Fatalf("expected duplicate role error, got: %v", err)
	}
}

func TestValidateUnknownRole(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Roles = append(cfg.Roles, rbac.Role("superuser"))
	err := cfg.Validate()
	if !errors.Is(err, rbac.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got: %v", err)
	}
}

func TestValidateGrantForUnlistedRole(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Grants[rbac.RoleRecruiter] = []rbac.Permission{rbac.Can(rbac.ActionRead, rbac.SubjectJobs)}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "not listed in roles") {
		t.Fatalf("expected unlisted role error, got: %v", err)
	}
}

func TestValidateUnknownActionAndSubject(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Grants[rbac.RoleViewer] = []rbac.Permission{{Action: "approve", Subject: rbac.SubjectJobs}}
	if err := cfg.Validate(); !errors.Is(err, rbac.ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got: %v", err)
	}

	cfg = validBaseConfig()
	cfg.Grants[rbac.RoleViewer] = []rbac.Permission{{Action: rbac.ActionRead, Subject: "payroll"}}
	if err := cfg.Validate(); !errors.Is(err, rbac.ErrUnknownSubject) {
		t.Errorf("expected ErrUnknownSubject, got: %v", err)
	}
}

func TestNewTableNormalizesDuplicates(t *testing.T) {
	cfg := validBaseConfig()
	read := rbac.Can(rbac.ActionRead, rbac.SubjectJobs)
	cfg.Grants[rbac.RoleViewer] = []rbac.Permission{read, read, read}

	table, err := rbac.NewTable(cfg)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if got := table.Grants(rbac.RoleViewer); len(got) != 1 || got[0] != read {
		t.Errorf("expected a single normalized grant, got %v", got)
	}
}

func TestNewTableGivesEveryRoleAnEntry(t *testing.T) {
	cfg := validBaseConfig()
	delete(cfg.Grants, rbac.RoleViewer)

	table, err := rbac.NewTable(cfg)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if !table.Known(rbac.RoleViewer) {
		t.Error("viewer should have an empty entry")
	}
	if got := table.Grants(rbac.RoleViewer); len(got) != 0 {
		t.Errorf("expected empty grants, got %v", got)
	}
	if table.Known(rbac.RoleRecruiter) {
		t.Error("recruiter was not configured and should be unknown")
	}
}

func TestMustNewTablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNewTable should panic on invalid config")
		}
	}()
	rbac.MustNewTable(rbac.Config{})
}

func TestTableIsolatedFromConfig(t *testing.T) {
	cfg := validBaseConfig()
	table := rbac.MustNewTable(cfg)

	cfg.Grants[rbac.RoleViewer][0] = rbac.Can(rbac.ActionDelete, rbac.SubjectUsers)
	if table.Contains(rbac.RoleViewer, rbac.Can(rbac.ActionDelete, rbac.SubjectUsers)) {
		t.Error("mutating the source config must not change the table")
	}

	grants := table.Grants(rbac.RoleAdmin)
	grants[0] = rbac.Can(rbac.ActionCreate, rbac.SubjectSettings)
	if table.Contains(rbac.RoleAdmin, rbac.Can(rbac.ActionCreate, rbac.SubjectSettings)) {
		t.Error("mutating a Grants copy must not change the table")
	}
}

func TestMatrix(t *testing.T) {
	table := rbac.MustNewTable(validBaseConfig())

	for _, row := range table.Matrix() {
		if row.Subject != rbac.SubjectJobs {
			if len(row.Cells) != 0 {
				t.Errorf("subject %s should have no cells, got %v", row.Subject, row.Cells)
			}
			continue
		}
		if got := row.Cells[rbac.RoleAdmin]; len(got) != 2 || got[0] != rbac.ActionRead || got[1] != rbac.ActionDelete {
			t.Errorf("admin jobs cell = %v", got)
		}
		if got := row.Cells[rbac.RoleViewer]; len(got) != 1 || got[0] != rbac.ActionRead {
			t.Errorf("viewer jobs cell = %v", got)
		}
	}
}

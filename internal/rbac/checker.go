package rbac

import "fmt"

// Principal is the authenticated party a check is evaluated against.
// Role reports false when there is no authenticated identity.
type Principal interface {
	Role() (Role, bool)
}

// Checker answers permission questions against a Table.
// It holds no mutable state and is safe for concurrent use.
type Checker struct {
	table *Table
}

// New creates a Checker backed by table
func New(table *Table) *Checker {
	return &Checker{table: table}
}

// Table returns the table the checker was built from.
func (c *Checker) Table() *Table {
	return c.table
}

// HasPermission reports whether p may perform action on subject.
// A nil principal, a principal without a role, or an unknown role all yield false.
func (c *Checker) HasPermission(p Principal, action Action, subject Subject) bool {
	return c.Authorize(p, action, subject) == nil
}

// HasAll reports whether p holds every permission in perms. An empty list passes.
func (c *Checker) HasAll(p Principal, perms ...Permission) bool {
	for _, perm := range perms {
		if !c.HasPermission(p, perm.Action, perm.Subject) {
			return false
		}
	}
	return true
}

// Authorize is the error-returning form of HasPermission.
// Denials wrap ErrDenied; a missing identity wraps ErrNoPrincipal as well.
func (c *Checker) Authorize(p Principal, action Action, subject Subject) error {
	role, ok := roleOf(p)
	if !ok {
		return fmt.Errorf("%w: %w", ErrDenied, ErrNoPrincipal)
	}
	if !c.table.Known(role) {
		return fmt.Errorf("%w: "+errDeniedUnknownRoleFmt, ErrDenied, role)
	}
	if !c.table.Contains(role, Can(action, subject)) {
		return fmt.Errorf("%w: "+errDeniedRoleCannotPerformFmt, ErrDenied, role, action, subject)
	}
	return nil
}

// Granted returns the permissions held by p, empty when unauthenticated.
func (c *Checker) Granted(p Principal) []Permission {
	role, ok := roleOf(p)
	if !ok {
		return []Permission{}
	}
	return c.table.Grants(role)
}

func roleOf(p Principal) (Role, bool) {
	if p == nil {
		return "", false
	}
	return p.Role()
}

// RolePrincipal adapts a bare role into a Principal.
type RolePrincipal Role

func (r RolePrincipal) Role() (Role, bool) {
	return Role(r), r != ""
}

package view

import (
	"ats-portal/internal/rbac"
)

// Choose returns content when nothing is required or p holds required, and
// fallback otherwise. The fallback defaults to T's zero value. Choose never
// inspects authentication itself; an anonymous principal simply holds nothing.
func Choose[T any](checker *rbac.Checker, p rbac.Principal, required *rbac.Permission, content T, fallback ...T) T {
	if required == nil || checker.HasPermission(p, required.Action, required.Subject) {
		return content
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	var zero T
	return zero
}

// Gate binds a checker and a principal for use inside templates.
type Gate struct {
	checker   *rbac.Checker
	principal rbac.Principal
}

// NewGate creates a Gate for p.
func NewGate(checker *rbac.Checker, p rbac.Principal) Gate {
	return Gate{checker: checker, principal: p}
}

// Can parses action and subject and reports whether the principal holds them.
// Unparseable values are denied.
func (g Gate) Can(action, subject string) bool {
	perm, err := rbac.NewPermission(action, subject)
	if err != nil {
		return false
	}
	return g.checker.HasPermission(g.principal, perm.Action, perm.Subject)
}

// Show is the template form of Choose with a string-encoded requirement.
// An empty action and subject mean nothing is required.
func (g Gate) Show(action, subject string, content any, fallback ...any) any {
	if action == "" && subject == "" {
		return content
	}
	perm, err := rbac.NewPermission(action, subject)
	if err != nil {
		return fallbackOrNil(fallback)
	}
	return Choose(g.checker, g.principal, &perm, content, fallbackOrNil(fallback))
}

// Granted lists the principal's permissions.
func (g Gate) Granted() []rbac.Permission {
	return g.checker.Granted(g.principal)
}

func fallbackOrNil(fallback []any) any {
	if len(fallback) > 0 {
		return fallback[0]
	}
	return nil
}

package guard

import "ats-portal/internal/rbac"

// Outcome is the result of evaluating a route guard.
type Outcome int

const (
	Render Outcome = iota
	RedirectLogin
	RedirectUnauthorized
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Decide evaluates a guard. Authentication is checked before any permission,
// and every required permission must hold. An empty list only requires login.
func Decide(checker *rbac.Checker, p rbac.Principal, required ...rbac.Permission) Outcome {
	if !authenticated(p) {
		return RedirectLogin
	}
	if !checker.HasAll(p, required...) {
		return RedirectUnauthorized
	}
	return Render
}

func authenticated(p rbac.Principal) bool {
	if p == nil {
		return false
	}
	_, ok := p.Role()
	return ok
}

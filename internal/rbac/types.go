package rbac

import (
	"fmt"
	"strings"
)

// Role represents a user's role in the system
type Role string

// Action represents an operation on a subject
type Action string

// Subject represents a protected resource category
type Subject string

const (
	RoleAdmin         Role = "admin"
	RoleRecruiter     Role = "recruiter"
	RoleHiringManager Role = "hiring_manager"
	RoleViewer        Role = "viewer"
)

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const (
	SubjectUsers          Subject = "users"
	SubjectRoles          Subject = "roles"
	SubjectCandidates     Subject = "candidates"
	SubjectJobs           Subject = "jobs"
	SubjectInterviews     Subject = "interviews"
	SubjectReports        Subject = "reports"
	SubjectPipelineLevels Subject = "pipeline_levels"
	SubjectSettings       Subject = "settings"
)

const permissionSeparator = ":"

var (
	allRoles    = []Role{RoleAdmin, RoleRecruiter, RoleHiringManager, RoleViewer}
	allActions  = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
	allSubjects = []Subject{
		SubjectUsers,
		SubjectRoles,
		SubjectCandidates,
		SubjectJobs,
		SubjectInterviews,
		SubjectReports,
		SubjectPipelineLevels,
		SubjectSettings,
	}
)

// Roles returns every role known to the system, in display order.
func Roles() []Role { return append([]Role(nil), allRoles...) }

// Actions returns every action, in display order.
func Actions() []Action { return append([]Action(nil), allActions...) }

// Subjects returns every subject, in display order.
func Subjects() []Subject { return append([]Subject(nil), allSubjects...) }

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (a Action) Valid() bool {
	for _, known := range allActions {
		if a == known {
			return true
		}
	}
	return false
}

func (s Subject) Valid() bool {
	for _, known := range allSubjects {
		if s == known {
			return true
		}
	}
	return false
}

func (r Role) String() string    { return string(r) }
func (a Action) String() string  { return string(a) }
func (s Subject) String() string { return string(s) }

// ParseRole converts a raw value into a Role, rejecting anything outside the closed set.
func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return r, nil
}

// ParseAction converts a raw value into an Action.
func ParseAction(raw string) (Action, error) {
	a := Action(raw)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
	return a, nil
}

// ParseSubject converts a raw value into a Subject.
func ParseSubject(raw string) (Subject, error) {
	s := Subject(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubject, raw)
	}
	return s, nil
}

// Permission is an (action, subject) grant. Equality is structural.
type Permission struct {
	Action  Action  `json:"action"`
	Subject Subject `json:"subject"`
}

// Can builds a Permission from already typed values.
func Can(action Action, subject Subject) Permission {
	return Permission{Action: action, Subject: subject}
}

func (p Permission) Valid() bool {
	return p.Action.Valid() && p.Subject.Valid()
}

// String renders the permission as "action:subject".
func (p Permission) String() string {
	return string(p.Action) + permissionSeparator + string(p.Subject)
}

// NewPermission parses an action and a subject separately.
func NewPermission(action, subject string) (Permission, error) {
	a, err := ParseAction(action)
	if err != nil {
		return Permission{}, err
	}
	s, err := ParseSubject(subject)
	if err != nil {
		return Permission{}, err
	}
	return Permission{Action: a, Subject: s}, nil
}

// ParsePermission parses the "action:subject" form used in table files.
func ParsePermission(raw string) (Permission, error) {
	action, subject, ok := strings.Cut(strings.TrimSpace(raw), permissionSeparator)
	if !ok {
		return Permission{}, fmt.Errorf("%w: %q", ErrMalformedPermission, raw)
	}
	return NewPermission(action, subject)
}

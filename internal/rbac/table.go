package rbac

import (
	"fmt"
	"sort"
)

type permissionSet map[Permission]struct{}

// Table is the normalized, read-only permission table.
// All state is built by NewTable and never mutated afterwards.
type Table struct {
	roles  []Role
	grants map[Role]permissionSet
}

// NewTable validates cfg and builds a Table from it.
// Every listed role gets an entry, possibly empty; duplicate grants collapse.
func NewTable(cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		roles:  append([]Role(nil), cfg.Roles...),
		grants: make(map[Role]permissionSet, len(cfg.Roles)),
	}
	for _, r := range cfg.Roles {
		t.grants[r] = make(permissionSet, len(cfg.Grants[r]))
		for _, p := range cfg.Grants[r] {
			t.grants[r][p] = struct{}{}
		}
	}

	return t, nil
}

// MustNewTable builds a Table and panics on invalid config.
func MustNewTable(cfg Config) *Table {
	t, err := NewTable(cfg)
	if err != nil {
		panic(fmt.Sprintf(errMustNewTablePanicFmt, err))
	}
	return t
}

// Roles returns the roles that have an entry, in configured order.
func (t *Table) Roles() []Role {
	return append([]Role(nil), t.roles...)
}

// Known reports whether role has an entry in the table.
func (t *Table) Known(role Role) bool {
	_, ok := t.grants[role]
	return ok
}

// Contains reports whether role is granted p. Unknown roles hold nothing.
func (t *Table) Contains(role Role, p Permission) bool {
	set, ok := t.grants[role]
	if !ok {
		return false
	}
	_, granted := set[p]
	return granted
}

// Grants returns a sorted copy of the permissions held by role.
func (t *Table) Grants(role Role) []Permission {
	set := t.grants[role]
	out := make([]Permission, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sortPermissions(out)
	return out
}

// Entry is one row of the table as exposed for audit.
type Entry struct {
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// Entries returns the whole table in role order.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.roles))
	for _, r := range t.roles {
		entries = append(entries, Entry{Role: r, Permissions: t.Grants(r)})
	}
	return entries
}

// MatrixRow is one subject line of the role x action grid.
type MatrixRow struct {
	Subject Subject
	Cells   map[Role][]Action
}

// Matrix groups grants by subject for the role permissions page.
func (t *Table) Matrix() []MatrixRow {
	rows := make([]MatrixRow, 0, len(allSubjects))
	for _, s := range allSubjects {
		row := MatrixRow{Subject: s, Cells: make(map[Role][]Action, len(t.roles))}
		for _, r := range t.roles {
			for _, a := range allActions {
				if t.Contains(r, Can(a, s)) {
					row.Cells[r] = append(row.Cells[r], a)
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func sortPermissions(perms []Permission) {
	subjectOrder := indexOf(allSubjects)
	actionOrder := indexOf(allActions)
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].Subject != perms[j].Subject {
			return subjectOrder[perms[i].Subject] < subjectOrder[perms[j].Subject]
		}
		return actionOrder[perms[i].Action] < actionOrder[perms[j].Action]
	})
}

func indexOf[T comparable](values []T) map[T]int {
	idx := make(map[T]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

package view

import "ats-portal/internal/rbac"

// NavItem is one sidebar link.
type NavItem struct {
	Label    string
	Href     string
	Requires *rbac.Permission
	Active   bool
}

// NavSection groups sidebar links under an optional heading.
type NavSection struct {
	Title string
	Items []NavItem
}

func requires(action rbac.Action, subject rbac.Subject) *rbac.Permission {
	p := rbac.Can(action, subject)
	return &p
}

func sidebar() []NavSection {
	return []NavSection{
		{Items: []NavItem{
			{Label: "Dashboard", Href: "/"},
			{Label: "Candidates", Href: "/candidates", Requires: requires(rbac.ActionRead, rbac.SubjectCandidates)},
			{Label: "Jobs", Href: "/jobs", Requires: requires(rbac.ActionRead, rbac.SubjectJobs)},
			{Label: "Workflow", Href: "/workflow", Requires: requires(rbac.ActionRead, rbac.SubjectJobs)},
			{Label: "Reports", Href: "/reports", Requires: requires(rbac.ActionRead, rbac.SubjectJobs)},
		}},
		{Title: "User Management", Items: []NavItem{
			{Label: "User Management", Href: "/users", Requires: requires(rbac.ActionRead, rbac.SubjectUsers)},
			{Label: "Role Management", Href: "/roles", Requires: requires(rbac.ActionRead, rbac.SubjectUsers)},
		}},
		{Title: "Settings", Items: []NavItem{
			{Label: "Settings", Href: "/settings", Requires: requires(rbac.ActionRead, rbac.SubjectSettings)},
		}},
	}
}

// Nav returns the sidebar entries visible to the gate's principal, marking
// the one matching current as active. Sections with no visible entry are dropped.
func Nav(g Gate, current string) []NavSection {
	var out []NavSection
	for _, section := range sidebar() {
		visible := make([]NavItem, 0, len(section.Items))
		for _, item := range section.Items {
			shown := Choose(g.checker, g.principal, item.Requires, &item)
			if shown == nil {
				continue
			}
			entry := *shown
			entry.Active = entry.Href == current
			visible = append(visible, entry)
		}
		if len(visible) > 0 {
			out = append(out, NavSection{Title: section.Title, Items: visible})
		}
	}
	return out
}

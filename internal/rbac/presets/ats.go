package presets

import "ats-portal/internal/rbac"

// ATS returns the default permission table for the applicant-tracking portal
func ATS() rbac.Config {
	return rbac.Config{
		Roles: []rbac.Role{
			rbac.RoleAdmin,
			rbac.RoleRecruiter,
			rbac.RoleHiringManager,
			rbac.RoleViewer,
		},
		Grants: map[rbac.Role][]rbac.Permission{
			rbac.RoleAdmin: everything(),
			rbac.RoleRecruiter: {
				rbac.Can(rbac.ActionCreate, rbac.SubjectCandidates),
				rbac.Can(rbac.ActionRead, rbac.SubjectCandidates),
				rbac.Can(rbac.ActionUpdate, rbac.SubjectCandidates),
				rbac.Can(rbac.ActionCreate, rbac.SubjectJobs),
				rbac.Can(rbac.ActionRead, rbac.SubjectJobs),
				rbac.Can(rbac.ActionUpdate, rbac.SubjectJobs),
				rbac.Can(rbac.ActionCreate, rbac.SubjectInterviews),
				rbac.Can(rbac.ActionRead, rbac.SubjectInterviews),
				rbac.Can(rbac.ActionUpdate, rbac.SubjectInterviews),
				rbac.Can(rbac.ActionRead, rbac.SubjectUsers),
			},
			rbac.RoleHiringManager: {
				rbac.Can(rbac.ActionRead, rbac.SubjectCandidates),
				rbac.Can(rbac.ActionUpdate, rbac.SubjectCandidates),
				rbac.Can(rbac.ActionRead, rbac.SubjectJobs),
				rbac.Can(rbac.ActionCreate, rbac.SubjectInterviews),
				rbac.Can(rbac.ActionRead, rbac.SubjectInterviews),
				rbac.Can(rbac.ActionUpdate, rbac.SubjectInterviews),
				rbac.Can(rbac.ActionRead, rbac.SubjectUsers),
			},
			rbac.RoleViewer: {
				rbac.Can(rbac.ActionRead, rbac.SubjectCandidates),
				rbac.Can(rbac.ActionRead, rbac.SubjectJobs),
				rbac.Can(rbac.ActionRead, rbac.SubjectInterviews),
			},
		},
	}
}

// everything grants each action on each subject
func everything() []rbac.Permission {
	var perms []rbac.Permission
	for _, s := range rbac.Subjects() {
		for _, a := range rbac.Actions() {
			perms = append(perms, rbac.Can(a, s))
		}
	}
	return perms
}

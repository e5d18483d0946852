package rbac

import "fmt"

// Config holds the raw permission table before normalization
type Config struct {
	Roles  []Role
	Grants map[Role][]Permission
}

// Validate checks internal consistency of the Config
func (c *Config) Validate() error {
	if len(c.Roles) == 0 {
		return fmt.Errorf(errConfigRolesEmpty)
	}

	roleSet := make(map[Role]bool, len(c.Roles))
	for _, r := range c.Roles {
		if !r.Valid() {
			return fmt.Errorf(errConfigRoleInvalidFmt, fmt.Errorf("%w: %q", ErrUnknownRole, r))
		}
		if roleSet[r] {
			return fmt.Errorf(errConfigDuplicateRoleFmt, r)
		}
		roleSet[r] = true
	}

	for role, perms := range c.Grants {
		if !roleSet[role] {
			return fmt.Errorf(errConfigGrantUnknownRoleFmt, role)
		}
		for _, p := range perms {
			if !p.Action.Valid() {
				return fmt.Errorf(errConfigGrantInvalidActionFmt, role, fmt.Errorf("%w: %q", ErrUnknownAction, p.Action))
			}
			if !p.Subject.Valid() {
				return fmt.Errorf(errConfigGrantInvalidSubjectFmt, role, fmt.Errorf("%w: %q", ErrUnknownSubject, p.Subject))
			}
		}
	}

	return nil
}

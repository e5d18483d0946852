package rbac

import "errors"

var (
	ErrDenied              = errors.New("authorization denied")
	ErrNoPrincipal         = errors.New("no authenticated identity")
	ErrUnknownRole         = errors.New("unknown role")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownSubject      = errors.New("unknown subject")
	ErrMalformedPermission = errors.New("malformed permission")
)

const (
	errConfigRolesEmpty             = "rbac config: roles must not be empty"
	errConfigDuplicateRoleFmt       = "rbac config: duplicate role: %s"
	errConfigRoleInvalidFmt         = "rbac config: %w"
	errConfigGrantUnknownRoleFmt    = "rbac config: grant references role not listed in roles: %s"
	errConfigGrantInvalidActionFmt  = "rbac config: grant for role %s: %w"
	errConfigGrantInvalidSubjectFmt = "rbac config: grant for role %s: %w"
	errMustNewTablePanicFmt         = "rbac.MustNewTable: %v"
	errDeniedRoleCannotPerformFmt   = "role '%s' cannot %s %s"
	errDeniedUnknownRoleFmt         = "role '%s' has no permission table entry"
	errLoadReadSourceFmt            = "rbac table: read %s: %w"
	errLoadDecodeFmt                = "rbac table: decode %s: %w"
	errLoadRoleFmt                  = "rbac table: %w"
	errLoadPermissionFmt            = "rbac table: role %s: %w"
	errLoadS3URIFmt                 = "rbac table: invalid s3 uri %q"
	errLoadS3Missing                = "rbac table: s3 source requires an object fetcher"
)

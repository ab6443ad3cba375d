package auth

import (
	"fmt"
	"strings"
)

// GlobalRole is the system-wide authorization tier of a principal.
type GlobalRole string

const (
	// RoleNone marks an account that registered but has not been approved.
	RoleNone GlobalRole = "NONE"
	// RoleUser is a regular field account. Project access comes from memberships.
	RoleUser GlobalRole = "USER"
	// RoleAdmin has full access to every project and all administrative operations.
	RoleAdmin GlobalRole = "ADMIN"
	// RoleCEO can read every project but only mutate its own profile and comments.
	RoleCEO GlobalRole = "CEO"
)

// Known reports whether r is one of the enumerated global roles.
func (r GlobalRole) Known() bool {
	switch r {
	case RoleNone, RoleUser, RoleAdmin, RoleCEO:
		return true
	}
	return false
}

// Elevated reports whether r may act on projects without a membership.
func (r GlobalRole) Elevated() bool {
	return r == RoleAdmin || r == RoleCEO
}

func (r GlobalRole) String() string { return string(r) }

// ParseGlobalRole converts a user supplied value into a GlobalRole.
func ParseGlobalRole(s string) (GlobalRole, error) {
	r := GlobalRole(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Known() {
		return "", fmt.Errorf("invalid global role %q", s)
	}
	return r, nil
}

// ProjectRole is the per-membership role of a principal inside one project.
type ProjectRole string

const (
	ProjectRoleMandor    ProjectRole = "MANDOR"
	ProjectRoleArchitect ProjectRole = "ARCHITECT"
	ProjectRoleFinance   ProjectRole = "FINANCE"
)

// AllProjectRoles lists every project role in display order.
var AllProjectRoles = []ProjectRole{ProjectRoleMandor, ProjectRoleArchitect, ProjectRoleFinance}

// Known reports whether r is one of the enumerated project roles.
func (r ProjectRole) Known() bool {
	switch r {
	case ProjectRoleMandor, ProjectRoleArchitect, ProjectRoleFinance:
		return true
	}
	return false
}

func (r ProjectRole) String() string { return string(r) }

// ParseProjectRole converts a user supplied value into a ProjectRole.
func ParseProjectRole(s string) (ProjectRole, error) {
	r := ProjectRole(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Known() {
		return "", fmt.Errorf("invalid project role %q", s)
	}
	return r, nil
}

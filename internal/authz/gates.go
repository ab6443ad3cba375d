package authz

import (
	"context"
	"fmt"
	"slices"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// MembershipFinder looks up the project role held by a user.
// ok is false when no membership row exists.
type MembershipFinder interface {
	FindProjectRole(ctx context.Context, userID, projectID string) (role auth.ProjectRole, ok bool, err error)
}

// GlobalRoleGate admits authenticated, active principals holding a known,
// assigned global role. The checks run in a fixed order.
func GlobalRoleGate(_ context.Context, d Decision, _ Operation, _ Input) (Decision, error) {
	p := d.Principal
	if p == nil {
		return d, auth.ErrUnauthenticated
	}
	if !p.Active {
		return d, auth.ErrAccountInactive
	}
	switch p.Role {
	case auth.RoleNone:
		return d, auth.ErrRoleNotAssigned
	case auth.RoleAdmin, auth.RoleCEO, auth.RoleUser:
		return d, nil
	default:
		return d, auth.ErrRoleInvalid
	}
}

// AdminGate admits authenticated, active ADMIN and CEO principals.
func AdminGate(_ context.Context, d Decision, _ Operation, _ Input) (Decision, error) {
	p := d.Principal
	if p == nil {
		return d, auth.ErrUnauthenticated
	}
	if !p.Active {
		return d, auth.ErrAccountInactive
	}
	if !p.Role.Elevated() {
		return d, auth.ErrAdminRequired
	}
	return d, nil
}

// MembershipGate resolves the principal's role inside the requested project.
// ADMIN and CEO bypass a missing membership; USER principals must hold one.
func MembershipGate(members MembershipFinder) Gate {
	return func(ctx context.Context, d Decision, _ Operation, in Input) (Decision, error) {
		if in.ProjectID == "" {
			return d, auth.ErrProjectRequired
		}
		p := d.Principal
		if p == nil {
			return d, auth.ErrUnauthenticated
		}

		role, ok, err := members.FindProjectRole(ctx, p.ID, in.ProjectID)
		if err != nil {
			return d, fmt.Errorf("resolve project membership: %w", err)
		}

		d.ProjectID = in.ProjectID
		d.Bypass = p.Role.Elevated()
		if ok {
			d.ProjectRole = role
		}
		if !ok && !d.Bypass {
			return d, auth.ErrNotAMember
		}
		return d, nil
	}
}

// ProjectRoleGate applies the operation's allow-list and the CEO read-only rule.
// ADMIN always passes.
func ProjectRoleGate(ctx context.Context, d Decision, op Operation, in Input) (Decision, error) {
	p := d.Principal
	if p == nil {
		return d, auth.ErrUnauthenticated
	}
	if p.Role == auth.RoleAdmin {
		return d, nil
	}
	if d.HasProjectRole() && len(op.AllowedRoles) > 0 && !slices.Contains(op.AllowedRoles, d.ProjectRole) {
		return d, auth.RoleNotPermitted(op.AllowedRoles)
	}
	return CEOReadOnlyGate(ctx, d, op, in)
}

// CEOReadOnlyGate rejects CEO mutations unless the operation allows them.
func CEOReadOnlyGate(_ context.Context, d Decision, op Operation, _ Input) (Decision, error) {
	if d.Principal != nil && d.Principal.Role == auth.RoleCEO && op.Class == Mutation && !op.AllowCEO {
		return d, auth.ErrCEOReadOnly
	}
	return d, nil
}

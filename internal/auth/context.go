package auth

import "context"

// Principal captures the identity of the caller, loaded fresh from storage on
// every request so approval and role changes apply immediately.
type Principal struct {
	ID     string
	Name   string
	Email  string
	Image  string
	Active bool
	Role   GlobalRole
	// SessionID references the session the principal was resolved from.
	SessionID string
}

// IsAdmin reports whether the principal holds the top global role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type principalContextKey struct{}

// SetPrincipal stores the resolved principal on the context for downstream consumers.
func SetPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext returns the principal resolved for the request, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*Principal)
	return principal, ok && principal != nil
}

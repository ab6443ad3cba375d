package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind tags an authorization failure.
type Kind string

const (
	KindUnauthenticated  Kind = "UNAUTHENTICATED"
	KindAccountInactive  Kind = "ACCOUNT_INACTIVE"
	KindRoleNotAssigned  Kind = "ROLE_NOT_ASSIGNED"
	KindRoleInvalid      Kind = "ROLE_INVALID"
	KindAdminRequired    Kind = "ADMIN_REQUIRED"
	KindBadRequest       Kind = "BAD_REQUEST"
	KindNotAMember       Kind = "NOT_A_MEMBER"
	KindRoleNotPermitted Kind = "ROLE_NOT_PERMITTED"
	KindCEOReadOnly      Kind = "CEO_READ_ONLY"
	KindNotFound         Kind = "NOT_FOUND"
	KindNotOwner         Kind = "NOT_OWNER"
)

// HTTPStatus maps a kind onto its transport status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusForbidden
	}
}

// Error is a tagged authorization failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error with the same kind, so errors.Is(err, ErrNotOwner) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels with the default message of each kind.
var (
	ErrUnauthenticated = &Error{KindUnauthenticated, "Not authenticated"}
	ErrAccountInactive = &Error{KindAccountInactive, "Account is not active. Please wait for admin approval."}
	ErrRoleNotAssigned = &Error{KindRoleNotAssigned, "You do not have permission to access this system."}
	ErrRoleInvalid     = &Error{KindRoleInvalid, "Invalid role. Access denied."}
	ErrAdminRequired   = &Error{KindAdminRequired, "Admin access required."}
	ErrProjectRequired = &Error{KindBadRequest, "projectId is required"}
	ErrNotAMember      = &Error{KindNotAMember, "You are not a member of this project"}
	ErrCEOReadOnly     = &Error{KindCEOReadOnly, "CEO has read-only access to project operations"}
	ErrNotFound        = &Error{KindNotFound, "Resource not found"}
	ErrNotOwner        = &Error{KindNotOwner, "You can only modify your own resources"}
)

// RoleNotPermitted builds the denial naming the roles the operation accepts.
func RoleNotPermitted(allowed []ProjectRole) *Error {
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = string(r)
	}
	return &Error{
		Kind:    KindRoleNotPermitted,
		Message: "This action requires one of the following roles: " + strings.Join(names, ", "),
	}
}

// KindOf extracts the authorization kind from err.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

package iam

import (
	"context"
	"net/http"
	"strings"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// Authenticator extracts one kind of credential and resolves it to a principal.
//
// Return values:
//   - (principal, nil): credential present and valid
//   - (nil, nil): credential absent or invalid, try the next authenticator
//   - (nil, error): the backing store failed
type Authenticator interface {
	Authenticate(ctx context.Context, req AuthRequest) (*auth.Principal, error)
}

// AuthRequest carries the parts of an HTTP request authenticators look at.
type AuthRequest struct {
	Headers http.Header
	Cookies []*http.Cookie
}

// NewAuthRequest captures headers and cookies from r.
func NewAuthRequest(r *http.Request) AuthRequest {
	return AuthRequest{Headers: r.Header, Cookies: r.Cookies()}
}

// Cookie returns the value of the named cookie, or "".
func (r AuthRequest) Cookie(name string) string {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// BearerToken returns the token of an "Authorization: Bearer" header, or "".
func (r AuthRequest) BearerToken() string {
	if r.Headers == nil {
		return ""
	}
	header := r.Headers.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/apperr"
	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/services/iam"
)

// Authenticate resolves the caller through the IAM service and stores the
// principal on the request context.
//
// Requests without credentials pass through untouched; the authorization
// middleware decides whether the route needs a principal. Storage failures
// while resolving the session abort the request with 500.
func Authenticate(svc iam.Service, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := svc.AuthenticateRequest(r.Context(), iam.NewAuthRequest(r))
			if err != nil {
				apperr.Write(w, r, logger, err)
				return
			}
			if principal == nil {
				next.ServeHTTP(w, r)
				return
			}
			notePrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(auth.SetPrincipal(r.Context(), principal)))
		})
	}
}

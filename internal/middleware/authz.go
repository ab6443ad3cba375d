package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/apperr"
	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
)

// ProjectIDParam is the route parameter carrying the project id.
const ProjectIDParam = "projectID"

// Authorize runs the gate chain for op and hands the resulting decision to
// the next handler through the request context.
func Authorize(authorizer *authz.Authorizer, op authz.Operation, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := auth.PrincipalFromContext(r.Context())
			in := authz.Input{ProjectID: chi.URLParam(r, ProjectIDParam)}

			decision, err := authorizer.Authorize(r.Context(), principal, op, in)
			if err != nil {
				apperr.Write(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(authz.WithDecision(r.Context(), decision)))
		})
	}
}

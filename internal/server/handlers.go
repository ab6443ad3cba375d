package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/apperr"
	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/filter"
	"github.com/terraconstructs/sandaran/internal/middleware"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type handlers struct {
	svc          Services
	authorizer   *authz.Authorizer
	validator    validation.Validator
	filter       *filter.Filter
	logger       logrus.FieldLogger
	secureCookie bool
}

// guard returns the authorization middleware for op.
func (h *handlers) guard(op authz.Operation) func(http.Handler) http.Handler {
	return middleware.Authorize(h.authorizer, op, h.logger)
}

// decode reads the request body and decodes it into dst after validating it
// against schema.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &validation.Error{Path: "$", Message: fmt.Sprintf("read body: %v", err)}
	}
	return h.validator.Decode(schema, body, dst)
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	apperr.WriteJSON(w, status, v)
}

// decision returns the authorization decision stored by the guard.
func decision(r *http.Request) authz.Decision {
	d, _ := authz.DecisionFromContext(r.Context())
	return d
}

// principal returns the caller resolved for the request, if any.
func principal(r *http.Request) *auth.Principal {
	if d, ok := authz.DecisionFromContext(r.Context()); ok && d.Principal != nil {
		return d.Principal
	}
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

// projectID returns the project the guard admitted the caller to.
func projectID(r *http.Request) string {
	if d := decision(r); d.ProjectID != "" {
		return d.ProjectID
	}
	return chi.URLParam(r, middleware.ProjectIDParam)
}

// filterItems applies the ?filter= expression to items.
func filterItems[T any](h *handlers, r *http.Request, items []T) ([]T, error) {
	return filter.Apply(h.filter, strings.TrimSpace(r.URL.Query().Get("filter")), items)
}

// writeList filters items and writes the result.
func writeList[T any](h *handlers, w http.ResponseWriter, r *http.Request, items []T) {
	filtered, err := filterItems(h, r, items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if filtered == nil {
		filtered = []T{}
	}
	h.writeJSON(w, http.StatusOK, filtered)
}

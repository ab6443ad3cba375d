package authz

import (
	"context"

	"github.com/terraconstructs/sandaran/internal/auth"
)

// Class separates reads from writes. CEO principals may only run queries
// unless the operation opts in with AllowCEO.
type Class int

const (
	Query Class = iota
	Mutation
)

func (c Class) String() string {
	if c == Mutation {
		return "mutation"
	}
	return "query"
}

// Operation declares how a protected operation is gated.
type Operation struct {
	Name  string
	Class Class
	// AdminOnly replaces the global role gate with the admin gate.
	AdminOnly bool
	// ProjectScoped runs the membership resolver and project role gate.
	ProjectScoped bool
	// AllowedRoles is the project role allow-list. Empty admits every project role.
	AllowedRoles []auth.ProjectRole
	// AllowCEO lets CEO principals run the operation even when it is a mutation.
	AllowCEO bool
}

// Input carries the request data the gates need.
type Input struct {
	ProjectID string
}

// Decision is the context enriched by the chain and handed to the handler.
type Decision struct {
	Principal *auth.Principal
	ProjectID string
	// ProjectRole is empty when the principal reached the project through
	// elevated bypass without holding a membership.
	ProjectRole auth.ProjectRole
	Bypass      bool
}

// HasProjectRole reports whether a membership role was resolved.
func (d Decision) HasProjectRole() bool {
	return d.ProjectRole != ""
}

// Gate is one step of the pipeline.
type Gate func(ctx context.Context, d Decision, op Operation, in Input) (Decision, error)

// Chain is an ordered list of gates.
type Chain []Gate

// Run evaluates every gate in order and stops at the first failure.
func (c Chain) Run(ctx context.Context, d Decision, op Operation, in Input) (Decision, error) {
	for _, gate := range c {
		next, err := gate(ctx, d, op, in)
		if err != nil {
			return Decision{}, err
		}
		d = next
	}
	return d, nil
}

type decisionContextKey struct{}

// WithDecision stores a successful decision on the context.
func WithDecision(ctx context.Context, d Decision) context.Context {
	return context.WithValue(ctx, decisionContextKey{}, d)
}

// DecisionFromContext returns the decision stored by the authorization middleware.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(Decision)
	return d, ok
}

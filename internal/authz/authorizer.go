package authz

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/telemetry"
)

const tracerName = "sandaran/authz"

// Outcome labels recorded for every decision.
const (
	OutcomeAllow = "allow"
	OutcomeError = "error"
)

// Recorder receives one observation per evaluated operation.
// outcome is OutcomeAllow, OutcomeError or the denial kind.
type Recorder interface {
	RecordDecision(operation, outcome string)
}

// Authorizer builds and runs the gate chain for an operation.
type Authorizer struct {
	members  MembershipFinder
	logger   logrus.FieldLogger
	recorder Recorder
}

// Option customises an Authorizer.
type Option func(*Authorizer)

// WithLogger sets the logger used for denials and failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Authorizer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder sets the decision recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Authorizer) {
		a.recorder = r
	}
}

// NewAuthorizer creates an Authorizer that resolves memberships through members.
func NewAuthorizer(members MembershipFinder, opts ...Option) *Authorizer {
	a := &Authorizer{
		members: members,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chain returns the gates evaluated for op, in order.
func (a *Authorizer) Chain(op Operation) Chain {
	chain := make(Chain, 0, 3)
	if op.AdminOnly {
		chain = append(chain, AdminGate)
	} else {
		chain = append(chain, GlobalRoleGate)
	}
	if op.ProjectScoped {
		chain = append(chain, MembershipGate(a.members), ProjectRoleGate)
	} else {
		chain = append(chain, CEOReadOnlyGate)
	}
	return chain
}

// Authorize evaluates op for principal p. p may be nil when the request
// carried no usable session.
func (a *Authorizer) Authorize(ctx context.Context, p *auth.Principal, op Operation, in Input) (Decision, error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "authz.Authorize",
		attribute.String(telemetry.AttrOperation, op.Name),
		attribute.String(telemetry.AttrProjectID, in.ProjectID),
	)
	defer span.End()

	d, err := a.Chain(op).Run(ctx, Decision{Principal: p}, op, in)
	if err == nil {
		telemetry.Allow(span, string(d.ProjectRole))
		a.record(op.Name, OutcomeAllow)
		return d, nil
	}

	fields := logrus.Fields{"operation": op.Name}
	if p != nil {
		fields["principal"] = p.ID
	}
	if in.ProjectID != "" {
		fields["project"] = in.ProjectID
	}

	if kind, ok := auth.KindOf(err); ok {
		telemetry.Deny(span, string(kind))
		a.logger.WithFields(fields).WithField("kind", kind).Debug("authorization denied")
		a.record(op.Name, string(kind))
		return Decision{}, err
	}

	telemetry.Fail(span, err)
	a.logger.WithFields(fields).WithError(err).Error("authorization failed")
	a.record(op.Name, OutcomeError)
	return Decision{}, err
}

func (a *Authorizer) record(operation, outcome string) {
	if a.recorder != nil {
		a.recorder.RecordDecision(operation, outcome)
	}
}

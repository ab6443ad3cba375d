package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrPrincipalID   = "principal.id"
	AttrPrincipalRole = "principal.role"
	AttrOperation     = "authz.operation"
	AttrProjectID     = "project.id"
	AttrProjectRole   = "project.role"
	AttrAllowed       = "authz.allowed"
	AttrDenialKind    = "authz.kind"
)

// StartSpan starts spanName on the tracer registered as tracerName.
// Callers own span.End.
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// Fail marks span as errored. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Allow tags an authorization span with a granted decision.
func Allow(span trace.Span, projectRole string) {
	span.SetAttributes(
		attribute.Bool(AttrAllowed, true),
		attribute.String(AttrProjectRole, projectRole),
	)
}

// Deny tags an authorization span with a denial. Denials are expected
// outcomes, so the span status stays unset.
func Deny(span trace.Span, kind string) {
	span.SetAttributes(attribute.Bool(AttrAllowed, false))
	span.AddEvent("authz.denied", trace.WithAttributes(attribute.String(AttrDenialKind, kind)))
}

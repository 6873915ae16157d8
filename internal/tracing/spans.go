package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPPath       = "url.path"
	AttrHTTPStatusCode = "http.response.status_code"

	AttrProjectID  = "gitlab.project.id"
	AttrIssueIID   = "gitlab.issue.iid"
	AttrOpKind     = "board.op.kind"
	AttrOpID       = "board.op.id"
	AttrFromColumn = "board.column.from"
	AttrToColumn   = "board.column.to"
	AttrStateEvent = "board.state_event"
	AttrLabels     = "board.labels"
	AttrRolledBack = "board.rolled_back"
)

// Span names.
const (
	SpanGitLabRequest = "gitlab.request"
	SpanCommit        = "board.commit"
)

// Event names.
const (
	EventOptimisticApplied = "optimistic.applied"
	EventRollback          = "optimistic.rollback"
)

// Start opens a span on tracer. A nil tracer yields a detached no-op span,
// never the span already in ctx, so End cannot close the caller's span.
func Start(ctx context.Context, tracer trace.Tracer, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// End records err on span (if any) and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

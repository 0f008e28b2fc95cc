// Package tracing has a few helpers around opentracing spans.
package tracing

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	tags "github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/log"
)

// NewSpan starts a span named name and stores it in the returned context.
// When ctx already carries a span (the HTTP middleware puts one there), the
// new span is its child; otherwise it is a root span. Callers must call
// span.Finish() when done.
func NewSpan(ctx context.Context, tracer opentracing.Tracer, name string) (context.Context, opentracing.Span) {
	var span opentracing.Span
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		span = tracer.StartSpan(name, opentracing.ChildOf(parent.Context()))
	} else {
		span = tracer.StartSpan(name)
	}
	return opentracing.ContextWithSpan(ctx, span), span
}

// Error marks the span as failed, and logs the error
func Error(span opentracing.Span, err error) {
	tags.Error.Set(span, true)
	span.LogFields(log.Error(err))
}

package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every svz span.
const TracerName = "github.com/matzehuels/svz"

// Span attribute keys.
const (
	AttrStage   = "svz.stage"
	AttrParser  = "svz.parser"
	AttrSource  = "svz.source"
	AttrStructs = "svz.structs"
	AttrSkipped = "svz.skipped"
	AttrNodes   = "svz.nodes"
	AttrEdges   = "svz.edges"
	AttrFormat  = "svz.format"
	AttrCached  = "svz.cached"
)

// StartStageSpan starts an internal span for a pipeline stage ("parse",
// "build" or "render") using the global tracer provider.
func StartStageSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append([]attribute.KeyValue{attribute.String(AttrStage, stage)}, attrs...)
	return otel.Tracer(TracerName).Start(ctx, "svz."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartServerSpan starts a server span for an HTTP request.
func StartServerSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
		),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

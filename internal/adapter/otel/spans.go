package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bencher"

// StartIngestSpan starts a span covering one report's ingestion, from
// adapter parsing through detector evaluation (spec.md §4.6).
func StartIngestSpan(ctx context.Context, projectID, branchID, testbedID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ingest",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("branch.id", branchID),
			attribute.String("testbed.id", testbedID),
		),
	)
}

// StartDetectorSpan starts a span for evaluating one (benchmark, measure)
// pair against its active Threshold (spec.md §4.9).
func StartDetectorSpan(ctx context.Context, benchmarkID, measureID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "detector.evaluate",
		trace.WithAttributes(
			attribute.String("benchmark.id", benchmarkID),
			attribute.String("measure.id", measureID),
		),
	)
}

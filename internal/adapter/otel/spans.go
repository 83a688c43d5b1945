package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "workflow-notify"

// StartReportSpan starts the root span for reporting one workflow run.
func StartReportSpan(ctx context.Context, repository string, runID int64) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "report",
		trace.WithAttributes(
			attribute.String("repository", repository),
			attribute.Int64("run.id", runID),
		),
	)
}

// StartFetchSpan starts a span for reading run metadata from the CI provider.
func StartFetchSpan(ctx context.Context, provider string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "fetch",
		trace.WithAttributes(attribute.String("ci.provider", provider)),
	)
}

// StartDeliverySpan starts a span for delivering a notification to one notifier.
func StartDeliverySpan(ctx context.Context, notifierName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "delivery",
		trace.WithAttributes(attribute.String("notifier", notifierName)),
	)
}

package encounter

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

const tracerName = "github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"

// startSpan opens encounter.<op> with the caller and encounter attached
func startSpan(ctx context.Context, op, encounterID, userID string) (context.Context, trace.Span) {
	attrs := make([]attribute.KeyValue, 0, 2)
	if encounterID != "" {
		attrs = append(attrs, attribute.String("encounter.id", encounterID))
	}
	if userID != "" {
		attrs = append(attrs, attribute.String("user.id", userID))
	}

	return otel.Tracer(tracerName).Start(ctx, "encounter."+op, trace.WithAttributes(attrs...))
}

// finishSpan records err, if any, and ends the span
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.code", errors.GetCode(err).String()))
		span.SetStatus(codes.Error, errors.GetMessage(err))
	}
	span.End()
}

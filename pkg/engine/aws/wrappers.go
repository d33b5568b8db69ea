package aws

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/platform-cli/pkg/ownership"
	"github.com/DrSkyle/platform-cli/pkg/telemetry"
)

// Span helpers shared by the resource managers.

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer("platform-cli/aws").Start(ctx, name, trace.WithAttributes(attrs...))
}

// finishSpan records err on the span and ends it. Use it from a deferred closure over a
// named error result.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// resolveOwner returns the Owner tag value. An empty id resolves to ownership.UnknownOwner.
func resolveOwner(ctx context.Context, fn ownership.OwnerFunc) (string, error) {
	if fn == nil {
		return ownership.UnknownOwner, nil
	}
	id, err := fn(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return ownership.UnknownOwner, nil
	}
	return id, nil
}

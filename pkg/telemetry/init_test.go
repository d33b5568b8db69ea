package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInit_DiscardExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	ctx := context.Background()
	shutdown, err := Init(ctx, "platform-cli", "test", "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	_, span := Tracer("telemetry-test").Start(ctx, "op")
	if !span.SpanContext().IsValid() {
		t.Error("Expected a recording span from the SDK provider")
	}
	span.End()

	if err := shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInit_UnreachableCollectorDoesNotBlockSpans(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, "platform-cli", "test", "http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	start := time.Now()
	for i := 0; i < 20; i++ {
		_, span := Tracer("telemetry-test").Start(ctx, "op")
		span.End()
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Ending spans took %v, expected export to be asynchronous", elapsed)
	}

	flushCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	_ = shutdown(flushCtx)
}

package appointment

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/hackgods/vet-appointment-scheduling/internal/apperr"
)

func TestSchedule_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	f := newFixture(t, WithTracer(tp.Tracer("appointment-test")))
	ctx := context.Background()

	if _, err := f.svc.Schedule(ctx, f.cmd(at(10, 0))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.Schedule(ctx, f.cmd(at(10, 0)))
	expectKind(t, err, apperr.Conflict)

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	for _, s := range spans {
		if s.Name != "appointment.Schedule" {
			t.Errorf("unexpected span name %q", s.Name)
		}
	}
	if spans[0].Status.Code == codes.Error {
		t.Error("expected the first booking span to succeed")
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected the conflicting booking span to be an error, got %v", spans[1].Status.Code)
	}
}

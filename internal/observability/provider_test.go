package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetupTracingExportsSpansToLogger(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	core, logs := observer.New(zapcore.DebugLevel)
	shutdown, err := SetupTracing(zap.New(core), "reachright-web", 1)
	if err != nil {
		t.Fatalf("SetupTracing: %v", err)
	}

	r := chi.NewRouter()
	r.Use(Trace)
	r.Get("/pricing", func(w http.ResponseWriter, r *http.Request) {})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pricing", nil))

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	entries := logs.FilterMessage("GET /pricing").All()
	if len(entries) != 1 {
		t.Fatalf("expected one exported span, got %d", logs.Len())
	}
	fields := entries[0].ContextMap()
	if fields["http.route"] != "/pricing" {
		t.Fatalf("unexpected route attribute %v", fields["http.route"])
	}
	if fields["traceId"] == "" {
		t.Fatalf("expected trace id field")
	}
	if entries[0].LoggerName != "trace" {
		t.Fatalf("unexpected logger name %q", entries[0].LoggerName)
	}
}

func TestSetupTracingRejectsBadRatio(t *testing.T) {
	for _, ratio := range []float64{0, -0.5, 1.5} {
		if _, err := SetupTracing(zap.NewNop(), "reachright-web", ratio); err == nil {
			t.Fatalf("expected error for ratio %v", ratio)
		}
	}
}

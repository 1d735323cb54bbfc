package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// SetupTracing registers a global TracerProvider that samples ratio of root
// spans and writes finished spans to logger at debug level. The returned
// function flushes pending spans and must be called before exit.
func SetupTracing(logger *zap.Logger, service string, ratio float64) (func(context.Context) error, error) {
	if ratio <= 0 || ratio > 1 {
		return nil, errors.New("observability: trace sample ratio must be in (0, 1]")
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		sdktrace.WithBatcher(&logExporter{logger: logger.Named("trace")}),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", service))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

type logExporter struct {
	logger *zap.Logger
}

func (e *logExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := []zap.Field{
			zap.String("traceId", s.SpanContext().TraceID().String()),
			zap.String("spanId", s.SpanContext().SpanID().String()),
			zap.String("status", s.Status().Code.String()),
			zap.Duration("duration", s.EndTime().Sub(s.StartTime())),
		}
		if parent := s.Parent(); parent.IsValid() {
			fields = append(fields, zap.String("parentSpanId", parent.SpanID().String()))
		}
		for _, kv := range s.Attributes() {
			fields = append(fields, zap.String(string(kv.Key), kv.Value.Emit()))
		}
		e.logger.Debug(s.Name(), fields...)
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error { return nil }

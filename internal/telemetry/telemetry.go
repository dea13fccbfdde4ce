// Package telemetry wires the OpenTelemetry trace provider.
package telemetry

import (
	"context"
	"io"
	"strings"

	"project-management-api/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"
)

// ShutdownFunc flushes pending spans and stops the provider.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

func newStdoutExporter(w io.Writer) (trace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
}

// newCollectorExporter sends spans to an OTLP/HTTP collector such as
// "localhost:4318".
func newCollectorExporter(ctx context.Context, endpoint string) (trace.SpanExporter, error) {
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return otlptracehttp.New(ctx,
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpoint(endpoint),
	)
}

func newResource(serviceName string) *resource.Resource {
	if serviceName == "" {
		serviceName = "project-management-api"
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
}

// NewProvider installs a global tracer provider and returns its teardown.
//
// Exporter priority:
//  1. OTEL_EXPORTER_OTLP_ENDPOINT, an OTLP/HTTP collector
//  2. TRACE_STDOUT=true, pretty-printed spans written to w
//
// With neither set tracing stays on the otel no-op provider.
func NewProvider(ctx context.Context, cfg *config.Config, w io.Writer) (ShutdownFunc, error) {
	var (
		exp trace.SpanExporter
		err error
	)
	switch {
	case cfg.OTELExporterEndpoint != "":
		exp, err = newCollectorExporter(ctx, cfg.OTELExporterEndpoint)
	case cfg.TraceStdout:
		exp, err = newStdoutExporter(w)
	default:
		zap.L().Debug("tracing disabled")
		return noopShutdown, nil
	}
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(newResource(cfg.OTELServiceName)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

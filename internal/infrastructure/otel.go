package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"prfcli/internal/config"
	"prfcli/pkg/contracts"
)

const (
	ServiceName = "prfcli"
	TracerName  = "prfcli/pipeline"
)

// Tracing holds the tracer provider of a process.
type Tracing struct {
	Provider *sdktrace.TracerProvider
	Tracer   trace.Tracer
	sink     io.Closer
	logger   *slog.Logger
}

// InitializeTracing sets up OpenTelemetry tracing. The "none" exporter keeps
// the global no-op provider.
func InitializeTracing(cfg config.TelemetryConfig, logger *slog.Logger) (*Tracing, error) {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracing{logger: logger}

	var opts []stdouttrace.Option
	switch cfg.TraceExporter {
	case "", "none":
		t.Tracer = otel.Tracer(TracerName)
		return t, nil
	case "stdout":
		opts = append(opts, stdouttrace.WithPrettyPrint())
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		t.sink = f
		opts = append(opts, stdouttrace.WithWriter(f))
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes("",
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", contracts.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Provider = tp
	t.Tracer = tp.Tracer(TracerName, trace.WithInstrumentationVersion(contracts.Version))

	logger.Info("Tracing initialized", slog.String("exporter", cfg.TraceExporter))
	return t, nil
}

// Shutdown flushes pending spans and releases the exporter sink.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.Provider == nil {
		return nil
	}
	err := t.Provider.Shutdown(ctx)
	if t.sink != nil {
		if cerr := t.sink.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// StartSpan starts a span on the global tracer.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError marks the span as failed.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Package telemetry bootstraps an OpenTelemetry tracer provider for the
// pipeline, exporting spans only when OTEL_EXPORTER_OTLP_ENDPOINT is set.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/v2vconvert/v2v-convert/internal/logger"
	autoexport "go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracerName is the tracer name for this tool. No pipeline stage starts
// spans under it; only the provider setup and shutdown are wired.
const TracerName = "v2vconvert"

var shutdownFn func(ctx context.Context) error

// Init sets up the global tracer provider. It is a no-op (leaving the
// default no-op tracer provider in place) unless the user has opted in by
// setting OTEL_EXPORTER_OTLP_ENDPOINT.
func Init(ctx context.Context, disable bool, toolVersion string) error {
	if disable {
		logger.Log.Info("telemetry collection disabled")
		return nil
	} else if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		logger.Log.Debug("no OTLP endpoint set, telemetry will not be collected")
		return nil
	}

	exporter, err := autoexport.NewSpanExporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter:\n%w", err)
	}

	res, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			attribute.String("service.name", "v2vconvert"),
			attribute.String("service.version", toolVersion),
			attribute.String("host.architecture", runtime.GOARCH),
		),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	shutdownFn = tp.Shutdown

	return nil
}

// ForceFlush attempts to flush any pending spans to the exporter.
func ForceFlush(ctx context.Context) error {
	tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	if !ok {
		return nil
	}

	return tp.ForceFlush(ctx)
}

// Shutdown flushes and shuts down the tracer provider, if one was
// configured by Init.
func Shutdown(ctx context.Context) error {
	if shutdownFn == nil {
		return nil
	}

	if err := ForceFlush(ctx); err != nil {
		logger.Log.Warnf("failed to flush telemetry spans: %v", err)
	}

	return shutdownFn(ctx)
}

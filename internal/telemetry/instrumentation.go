package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Episode names, slugs and URLs are unbounded; keep them in logs and out of
// span attributes that feed metrics.

// InstrumentedFunc represents a function that can be instrumented.
type InstrumentedFunc func(ctx context.Context) error

// InstrumentOperation wraps fn in a span.
func (t *Telemetry) InstrumentOperation(ctx context.Context, operationName, component string, fn InstrumentedFunc) error {
	if t == nil || t.tracer == nil {
		return fn(ctx)
	}

	start := time.Now()
	ctx, span := t.tracer.Start(ctx, operationName)

	defer span.End()

	span.SetAttributes(
		attribute.String("component", component),
		attribute.String("operation", operationName),
	)

	err := fn(ctx)

	status := "success"
	if err != nil {
		status = "error"

		span.SetAttributes(attribute.Bool("error", true))
		span.SetStatus(codes.Error, err.Error())
	}

	span.SetAttributes(
		attribute.String("status", status),
		attribute.Float64("duration_seconds", time.Since(start).Seconds()),
	)

	return err
}

// InstrumentClientOperation instruments site client operations.
func (t *Telemetry) InstrumentClientOperation(ctx context.Context, operation string, fn InstrumentedFunc) error {
	err := t.InstrumentOperation(ctx, "client_"+operation, "site_client", fn)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.RecordClientOperation(ctx, operation, status)

	return err
}

// InstrumentResource instruments the download of one episode resource.
func (t *Telemetry) InstrumentResource(ctx context.Context, category string, fn InstrumentedFunc) error {
	start := time.Now()

	err := t.InstrumentOperation(ctx, "resource_download", "downloader", fn)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.RecordResource(ctx, category, status, time.Since(start))

	return err
}

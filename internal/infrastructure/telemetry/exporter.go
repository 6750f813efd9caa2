// Package telemetry provides OpenTelemetry tracing, metrics and log export.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const (
	defaultServiceVersion = "1.0.0"
	flushTimeout          = 10 * time.Second
)

// Exporter addresses the OTLP collector and names the emitting service.
// All three signal pipelines share one.
type Exporter struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

func (e Exporter) version() string {
	if e.ServiceVersion == "" {
		return defaultServiceVersion
	}
	return e.ServiceVersion
}

func (e Exporter) resource() (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(e.ServiceName),
		semconv.ServiceVersion(e.version()),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}
	return res, nil
}

// sdkProvider is the lifecycle the three SDK providers have in common
type sdkProvider interface {
	ForceFlush(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// pipeline tracks one signal's SDK provider. A nil sdk means the signal
// is disabled and every call is a no-op.
type pipeline struct {
	signal string
	sdk    sdkProvider
	logger *zap.Logger
}

func newPipeline(signal string, logger *zap.Logger) pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pipeline{signal: signal, logger: logger}
}

// IsEnabled reports whether the signal is exported
func (p *pipeline) IsEnabled() bool {
	return p.sdk != nil
}

// ForceFlush exports everything buffered so far
func (p *pipeline) ForceFlush(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.ForceFlush(ctx)
}

// Shutdown flushes and stops the exporter, waiting at most flushTimeout
func (p *pipeline) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()

	if err := p.sdk.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down %s export: %w", p.signal, err)
	}
	p.logger.Info("OTEL export stopped", zap.String("signal", p.signal))
	return nil
}

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const defaultMetricsInterval = time.Minute

// MetricsConfig enables periodic metric export
type MetricsConfig struct {
	Enabled bool
	// Interval between pushes, one minute when zero
	Interval time.Duration
	Exporter Exporter
}

// MeterProvider owns the metric pipeline
type MeterProvider struct {
	pipeline
	sdk *sdkmetric.MeterProvider
}

// NewMeterProvider installs a periodic OTLP metric reader as the global
// meter provider. When metrics are disabled the global no-op stays.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{pipeline: newPipeline("metrics", logger)}
	if !cfg.Enabled {
		return mp, nil
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Exporter.Endpoint)}
	if cfg.Exporter.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}
	res, err := cfg.Exporter.resource()
	if err != nil {
		return nil, err
	}

	mp.sdk = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
	)
	mp.pipeline.sdk = mp.sdk

	otel.SetMeterProvider(mp.sdk)
	mp.logger.Info("OTEL metric export started",
		zap.String("endpoint", cfg.Exporter.Endpoint),
		zap.Duration("interval", interval),
	)
	return mp, nil
}

// Meter returns a named meter, falling back to the global provider
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

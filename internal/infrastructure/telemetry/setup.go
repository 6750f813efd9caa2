package telemetry

import (
	"context"
	"errors"

	"github.com/motorshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Providers holds the three signal pipelines of one process
type Providers struct {
	Traces  *TracerProvider
	Metrics *MeterProvider
	Logs    *LoggerProvider
}

// Setup starts the pipelines enabled in cfg. Metrics and logs also need the
// master switch. A pipeline that fails to start is logged and left
// disabled so the process still comes up.
func Setup(ctx context.Context, cfg config.TelemetryConfig, serviceName, version string, logger *zap.Logger) *Providers {
	if logger == nil {
		logger = zap.NewNop()
	}
	exp := Exporter{
		Endpoint:       cfg.CollectorEndpoint,
		Insecure:       cfg.Insecure,
		ServiceName:    serviceName,
		ServiceVersion: version,
	}

	p := &Providers{}
	var err error

	if p.Traces, err = NewTracerProvider(ctx, TracingConfig{
		Enabled:       cfg.Enabled,
		SamplingRatio: cfg.SamplingRatio,
		Exporter:      exp,
	}, logger); err != nil {
		logger.Warn("Trace export disabled", zap.Error(err))
		p.Traces = &TracerProvider{pipeline: newPipeline("traces", logger)}
	}

	if p.Metrics, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:  cfg.Enabled && cfg.MetricsEnabled,
		Interval: cfg.MetricsInterval,
		Exporter: exp,
	}, logger); err != nil {
		logger.Warn("Metric export disabled", zap.Error(err))
		p.Metrics = &MeterProvider{pipeline: newPipeline("metrics", logger)}
	}

	if p.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:  cfg.Enabled && cfg.LogsEnabled,
		Exporter: exp,
	}, logger); err != nil {
		logger.Warn("Log export disabled", zap.Error(err))
		p.Logs = &LoggerProvider{pipeline: newPipeline("logs", logger)}
	}

	return p
}

// Shutdown stops every pipeline and returns all failures joined
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Traces.Shutdown(ctx),
		p.Metrics.Shutdown(ctx),
		p.Logs.Shutdown(ctx),
	)
}

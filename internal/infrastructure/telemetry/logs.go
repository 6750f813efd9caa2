package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsConfig enables log record export
type LogsConfig struct {
	Enabled  bool
	Exporter Exporter
}

// LoggerProvider owns the log record pipeline
type LoggerProvider struct {
	pipeline
	sdk *sdklog.LoggerProvider
}

// NewLoggerProvider installs a batching OTLP log exporter as the global
// logger provider. When log export is disabled nothing is installed.
func NewLoggerProvider(ctx context.Context, cfg LogsConfig, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{pipeline: newPipeline("logs", logger)}
	if !cfg.Enabled {
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Exporter.Endpoint)}
	if cfg.Exporter.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exp, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}
	res, err := cfg.Exporter.resource()
	if err != nil {
		return nil, err
	}

	lp.sdk = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
	)
	lp.pipeline.sdk = lp.sdk

	global.SetLoggerProvider(lp.sdk)
	lp.logger.Info("OTEL log export started", zap.String("endpoint", cfg.Exporter.Endpoint))
	return lp, nil
}

// core forwards zap entries at or above level into the log pipeline
func (lp *LoggerProvider) core(name string, level zapcore.Level) zapcore.Core {
	if lp == nil || lp.sdk == nil {
		return zapcore.NewNopCore()
	}
	c := otelzap.NewCore(name, otelzap.WithLoggerProvider(lp.sdk))
	if level <= zapcore.DebugLevel {
		return c
	}
	// otelzap accepts every level
	return &minLevelCore{Core: c, min: level}
}

// Bridge tees base into the log pipeline. base is returned as is when
// export is disabled.
func Bridge(base *zap.Logger, lp *LoggerProvider, name string, level zapcore.Level) *zap.Logger {
	if lp == nil || !lp.IsEnabled() {
		return base
	}
	return zap.New(zapcore.NewTee(base.Core(), lp.core(name, level)),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(l zapcore.Level) bool {
	return l >= c.min && c.Core.Enabled(l)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}

func (c *minLevelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.Level < c.min {
		return ce
	}
	return c.Core.Check(e, ce)
}

package telemetry_test

import (
	"context"
	"testing"

	"github.com/motorshop/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		SamplingRatio: 1,
		Exporter:      telemetry.Exporter{Endpoint: "localhost:14317", ServiceName: "test-service"},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_NilLogger(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.TracingConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

// The gRPC exporter dials lazily so no collector is needed
func TestNewTracerProvider_SamplingRatios(t *testing.T) {
	for _, ratio := range []float64{-1, 0, 0.5, 1, 2} {
		tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.TracingConfig{
			Enabled:       true,
			SamplingRatio: ratio,
			Exporter:      telemetry.Exporter{Endpoint: "localhost:14317", Insecure: true, ServiceName: "test-service"},
		}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.True(t, tp.IsEnabled())

		_, span := tp.Tracer("test").Start(context.Background(), "op")
		span.End()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = tp.Shutdown(ctx)
	}
}

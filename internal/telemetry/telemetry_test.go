package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/nimbusweather/nimbus/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "nimbus-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestInit_Disabled_StillPropagates(t *testing.T) {
	_, err := telemetry.Init(context.Background(), telemetry.Config{ServiceName: "nimbus-test"})
	require.NoError(t, err)

	carrier := propagation.MapCarrier{"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"}
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), carrier)

	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsValid())
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", sc.TraceID().String())
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio    float64
		contains string
	}{
		{ratio: 0, contains: "AlwaysOnSampler"},
		{ratio: 1, contains: "AlwaysOnSampler"},
		{ratio: 1.5, contains: "AlwaysOnSampler"},
		{ratio: 0.25, contains: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		s := telemetry.Sampler(tt.ratio)
		assert.Contains(t, s.Description(), "ParentBased")
		assert.Contains(t, s.Description(), tt.contains)
	}
}

func TestSampler_FollowsSampledParent(t *testing.T) {
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x01},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})

	result := telemetry.Sampler(0.0001).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: trace.ContextWithRemoteSpanContext(context.Background(), parent),
		TraceID:       parent.TraceID(),
		Name:          "GET /v1/locations",
	})
	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
}

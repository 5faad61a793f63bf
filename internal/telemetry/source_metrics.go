package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

const sourceMeterName = "github.com/nimbusweather/nimbus/internal/telemetry"

// SourceMetrics records weather source requests. It implements
// resilience.Observer so every source client reports to it.
type SourceMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// NewSourceMetrics creates the source request instruments on the global meter.
func NewSourceMetrics() (*SourceMetrics, error) {
	meter := otel.Meter(sourceMeterName)

	requestDuration, err := meter.Float64Histogram(
		"source.request.duration",
		metric.WithDescription("Duration of weather source requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"source.request.total",
		metric.WithDescription("Total number of weather source requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &SourceMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

// ObserveRequest records one logical request to the named upstream.
func (m *SourceMetrics) ObserveRequest(ctx context.Context, name string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("source.name", name),
		attribute.String("outcome", Outcome(err)),
	}

	// The request context may already be cancelled.
	ctx = context.WithoutCancel(ctx)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Outcome classifies a source request error for metric attributes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, resilience.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, resilience.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "failed"
	}
}

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/bacalhau-project/gtbarrier"

// Attribute keys attached to barrier measurements.
const (
	BarrierKey      = attribute.Key("gtbarrier.barrier")
	ParticipantsKey = attribute.Key("gtbarrier.participants")
	RankKey         = attribute.Key("gtbarrier.rank")
)

// BarrierMetrics are the instruments recorded by the run harness.
type BarrierMetrics struct {
	Rounds        *Counter
	RoundDuration metric.Int64Histogram
}

// NewBarrierMetrics creates the instruments on the global meter provider.
func NewBarrierMetrics() (*BarrierMetrics, error) {
	return NewBarrierMetricsWithMeter(otel.GetMeterProvider().Meter(meterName))
}

func NewBarrierMetricsWithMeter(meter metric.Meter) (*BarrierMetrics, error) {
	rounds, err := NewCounter(meter, "gtbarrier.rounds", "Number of completed barrier rounds")
	if err != nil {
		return nil, err
	}
	duration, err := meter.Int64Histogram(
		"gtbarrier.round.duration",
		metric.WithDescription("Time spent in one barrier round"),
		metric.WithUnit("us"),
	)
	if err != nil {
		return nil, err
	}
	return &BarrierMetrics{Rounds: rounds, RoundDuration: duration}, nil
}

// Counter counts rounds. Increments must be non-negative.
type Counter struct {
	counter metric.Int64Counter
}

func NewCounter(meter metric.Meter, name string, description string) (*Counter, error) {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (c *Counter) Add(ctx context.Context, num int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, num, metric.WithAttributes(attrs...))
}

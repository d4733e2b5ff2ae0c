//go:build unit || !integration

package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/embedded"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// MockInt64Counter implements metric.Int64Counter for testing
type MockInt64Counter struct {
	embedded.Int64Counter
	mock.Mock
}

func (m *MockInt64Counter) Add(ctx context.Context, value int64, opts ...metric.AddOption) {
	m.Called(ctx, value, opts)
}

// MockInt64Histogram implements metric.Int64Histogram for testing
type MockInt64Histogram struct {
	embedded.Int64Histogram
	mock.Mock
}

func (m *MockInt64Histogram) Record(ctx context.Context, value int64, opts ...metric.RecordOption) {
	m.Called(ctx, value, opts)
}

type BarrierMetricsSuite struct {
	suite.Suite
	ctx context.Context
}

func TestBarrierMetricsSuite(t *testing.T) {
	suite.Run(t, new(BarrierMetricsSuite))
}

func (s *BarrierMetricsSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *BarrierMetricsSuite) TestCounter() {
	mockCounter := new(MockInt64Counter)
	mockCounter.On("Add", s.ctx, int64(1), mock.Anything).Once()
	mockCounter.On("Add", s.ctx, int64(5), mock.Anything).Once()

	c := &Counter{counter: mockCounter}
	c.Inc(s.ctx, BarrierKey.String("sense"))
	c.Add(s.ctx, 5)

	mockCounter.AssertExpectations(s.T())
}

func (s *BarrierMetricsSuite) TestTimerRecordsMicroseconds() {
	mockHistogram := new(MockInt64Histogram)
	mockHistogram.On("Record", s.ctx, mock.AnythingOfType("int64"), mock.Anything).Once()

	stop := Timer(s.ctx, mockHistogram, BarrierKey.String("ring"))
	dur := stop()

	s.GreaterOrEqual(dur.Microseconds(), int64(0))
	mockHistogram.AssertExpectations(s.T())
}

func (s *BarrierMetricsSuite) TestInstrumentsExport() {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(s.ctx) }()

	m, err := NewBarrierMetricsWithMeter(provider.Meter(meterName))
	s.Require().NoError(err)

	attrs := []attribute.KeyValue{BarrierKey.String("tree"), ParticipantsKey.Int(4)}
	for i := 0; i < 3; i++ {
		m.Rounds.Inc(s.ctx, attrs...)
		Timer(s.ctx, m.RoundDuration, attrs...)()
	}

	var rm metricdata.ResourceMetrics
	s.Require().NoError(reader.Collect(s.ctx, &rm))
	s.Require().Len(rm.ScopeMetrics, 1)

	found := map[string]bool{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		found[md.Name] = true
		switch data := md.Data.(type) {
		case metricdata.Sum[int64]:
			s.Require().Len(data.DataPoints, 1)
			s.Equal(int64(3), data.DataPoints[0].Value)
		case metricdata.Histogram[int64]:
			s.Require().Len(data.DataPoints, 1)
			s.Equal(uint64(3), data.DataPoints[0].Count)
		}
	}
	s.True(found["gtbarrier.rounds"])
	s.True(found["gtbarrier.round.duration"])
}

func TestMetricsDisabledWithoutEndpoint(t *testing.T) {
	t.Setenv(otlpEndpoint, "")
	t.Setenv(disableTelemetry, "1")
	require.False(t, isMetricsEnabled())
}

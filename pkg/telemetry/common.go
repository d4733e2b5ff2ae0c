// Package telemetry exports barrier metrics over OTLP when an endpoint is
// configured through the standard OTEL_EXPORTER_OTLP_* variables.
package telemetry

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/bacalhau-project/gtbarrier/pkg/version"
)

const (
	serviceName = "gtbarrier"

	disableTelemetry    = "GTBARRIER_DISABLE_TELEMETRY"
	otlpEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	otlpMetricsEndpoint = "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"
	otlpProtocol        = "OTEL_EXPORTER_OTLP_PROTOCOL"
	otlpMetricsProtocol = "OTEL_EXPORTER_OTLP_METRICS_PROTOCOL"

	otlpProtocolGrpc = "grpc"
	otlpProtocolHTTP = "http/protobuf"
)

// SetupFromEnvs installs the global meter provider.
func SetupFromEnvs(ctx context.Context) {
	newMeterProvider(ctx)

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Err(err).Msg("Error occurred while exporting metrics")
	}))
}

// Cleanup flushes the remaining metrics in memory to the exporter and releases any telemetry resources.
func Cleanup(ctx context.Context) error {
	return cleanupMeterProvider(ctx)
}

// newResource returns a resource describing this application.
func newResource() *resource.Resource {
	res, err := resource.Merge(
		resource.Environment(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version.Get().GitVersion),
		),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create otel resource. Falling back to default resource config")
		res = resource.Default()
	}
	return res
}

package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var meterProvider *sdkmetric.MeterProvider

func newMeterProvider(ctx context.Context) {
	if !isMetricsEnabled() {
		log.Ctx(ctx).Debug().Msg("OTLP metrics endpoints are not defined. No metrics will be exported")
		return
	}

	exp, err := getMetricsClient(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to initialize OTLP metric exporter")
		return
	}

	meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(newResource()),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
	)
	otel.SetMeterProvider(meterProvider)
}

func isMetricsEnabled() bool {
	if v, ok := os.LookupEnv(disableTelemetry); ok && v == "1" {
		return false
	}
	if _, ok := os.LookupEnv(otlpEndpoint); ok {
		return true
	}
	_, ok := os.LookupEnv(otlpMetricsEndpoint)
	return ok
}

func getMetricsClient(ctx context.Context) (sdkmetric.Exporter, error) {
	protocol := otlpProtocolHTTP
	if v := os.Getenv(otlpProtocol); v != "" {
		protocol = v
	}
	if v := os.Getenv(otlpMetricsProtocol); v != "" {
		protocol = v
	}
	switch protocol {
	case otlpProtocolHTTP:
		return otlpmetrichttp.New(ctx)
	case otlpProtocolGrpc:
		return otlpmetricgrpc.New(ctx)
	default:
		return nil, fmt.Errorf("unknown or unsupported OTLP protocol: %s. No metrics will be exported", protocol)
	}
}

func cleanupMeterProvider(ctx context.Context) error {
	if meterProvider == nil {
		return nil
	}
	if err := meterProvider.ForceFlush(ctx); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("failed to flush metrics")
	}
	return meterProvider.Shutdown(ctx)
}

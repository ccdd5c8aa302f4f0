package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "mfocus"
	serviceVersion = "1.0.0"
)

// Exporter records mfocus activity and pushes it to an OTEL Collector.
type Exporter struct {
	provider     *sdkmetric.MeterProvider
	observations metric.Int64Counter
	tracked      metric.Float64Counter
	queryLatency metric.Float64Histogram
	ruleSwaps    metric.Int64Counter
}

// NewExporter creates an exporter that sends metrics over OTLP gRPC.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

// newExporter registers the instruments on provider.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	observations, err := meter.Int64Counter(
		"mfocus_observations_total",
		metric.WithDescription("Observations appended to the event store"),
		metric.WithUnit("{observation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating observations counter: %w", err)
	}

	tracked, err := meter.Float64Counter(
		"mfocus_tracked_seconds_total",
		metric.WithDescription("Tracked time per category"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tracked time counter: %w", err)
	}

	queryLatency, err := meter.Float64Histogram(
		"mfocus_query_duration_seconds",
		metric.WithDescription("Aggregation query latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating query latency histogram: %w", err)
	}

	ruleSwaps, err := meter.Int64Counter(
		"mfocus_rule_swaps_total",
		metric.WithDescription("Rule table update attempts by outcome"),
		metric.WithUnit("{swap}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rule swap counter: %w", err)
	}

	return &Exporter{
		provider:     provider,
		observations: observations,
		tracked:      tracked,
		queryLatency: queryLatency,
		ruleSwaps:    ruleSwaps,
	}, nil
}

func (e *Exporter) ObservationAppended(ctx context.Context, category string, d time.Duration) {
	opt := metric.WithAttributes(attribute.String("category", category))
	e.observations.Add(ctx, 1, opt)
	e.tracked.Add(ctx, d.Seconds(), opt)
}

func (e *Exporter) QueryCompleted(ctx context.Context, operation string, elapsed time.Duration, err error) {
	e.queryLatency.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("error", err != nil),
	))
}

func (e *Exporter) RulesSwapped(ctx context.Context, outcome string) {
	e.ruleSwaps.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}

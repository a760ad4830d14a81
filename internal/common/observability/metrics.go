package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Observability owns the otel meter provider and, when configured, the tracer provider.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracing        *Tracing
	meter          otelmetric.Meter
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	searchCounter  otelmetric.Int64Counter
	listingsResult otelmetric.Int64Histogram
}

// New builds the meter provider. A failing exporter yields a no-op Observability.
func New(serviceName string, log *zap.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", zap.Error(err))
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	searchCounter, _ := meter.Int64Counter(
		"listings.searches",
		otelmetric.WithDescription("Listing searches by classification"),
	)

	listingsResult, _ := meter.Int64Histogram(
		"listings.results",
		otelmetric.WithDescription("Listings returned per search"),
	)

	return &Observability{
		meterProvider:  provider,
		meter:          meter,
		jobCounter:     jobCounter,
		jobDuration:    jobDuration,
		searchCounter:  searchCounter,
		listingsResult: listingsResult,
	}
}

// WithTracing attaches a tracer provider so Shutdown flushes it too.
func (o *Observability) WithTracing(t *Tracing) *Observability {
	o.tracing = t
	return o
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// RecordSearch counts one completed search and the size of its result.
func (o *Observability) RecordSearch(ctx context.Context, isLocation bool, results int) {
	classification := "keyword"
	if isLocation {
		classification = "location"
	}
	attrs := otelmetric.WithAttributes(attribute.String("classification", classification))
	if o.searchCounter != nil {
		o.searchCounter.Add(ctx, 1, attrs)
	}
	if o.listingsResult != nil {
		o.listingsResult.Record(ctx, int64(results), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracing != nil {
		_ = o.tracing.Shutdown(ctx)
	}
}

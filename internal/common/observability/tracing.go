package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by the listings pipeline.
const TracerName = "listings-workers/listings"

// Tracing wraps the sdk tracer provider.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// NewTracing installs a global tracer provider exporting to a jaeger collector.
// An empty endpoint installs a provider without exporters, so spans are still
// created and sampled but go nowhere.
func NewTracing(serviceName, jaegerEndpoint string) (*Tracing, error) {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}

	if jaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
		if err != nil {
			return nil, fmt.Errorf("create jaeger exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)

	return &Tracing{provider: provider}, nil
}

// Tracer returns a tracer from this provider.
func (t *Tracing) Tracer() trace.Tracer {
	return t.provider.Tracer(TracerName)
}

func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/noah-isme/academy-ops-api/pkg/config"
)

// Tracer opens spans for service operations.
type Tracer interface {
	NewScope(ctx context.Context, scopeName, spanName string) (context.Context, Scope)
}

type tracerImpl struct {
	provider oteltrace.TracerProvider
}

func (t *tracerImpl) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, Scope) {
	ctx, span := t.provider.Tracer(scopeName).Start(ctx, spanName)
	return ctx, NewScope(span)
}

// Noop returns a tracer that records nothing.
func Noop() Tracer {
	return &tracerImpl{provider: noop.NewTracerProvider()}
}

// New builds an OTLP gRPC tracer when an endpoint is configured, otherwise a no-op tracer.
// The returned shutdown func flushes pending spans.
func New(ctx context.Context, cfg config.OtelConfig) (Tracer, func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return Noop(), func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		)),
	)
	otel.SetTracerProvider(provider)

	return &tracerImpl{provider: provider}, provider.Shutdown, nil
}

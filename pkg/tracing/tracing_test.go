package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/noah-isme/academy-ops-api/pkg/config"
)

func TestScopeRecordsErrorsAndAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tracer := &tracerImpl{provider: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))}

	_, scope := tracer.NewScope(context.Background(), "booking", "Book")
	scope.SetAttribute("slot_id", "s1")
	scope.SetAttribute("capacity", 3)
	scope.TraceIfError(nil)
	scope.TraceIfError(errors.New("slot is full"))
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Book", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Attributes(), 2)
}

func TestNewWithoutEndpointIsNoop(t *testing.T) {
	tracer, shutdown, err := New(context.Background(), config.OtelConfig{})
	require.NoError(t, err)
	_, scope := tracer.NewScope(context.Background(), "workflow", "SetChecklistItem")
	assert.NotPanics(t, scope.End)
	assert.NoError(t, shutdown(context.Background()))
}

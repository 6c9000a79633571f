package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	tracingopts "github.com/kart-io/onboarding-assistant/pkg/options/tracing"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestDisabledProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), tracingopts.NewOptions(), "onboarding", "test")
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestStdoutProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	opts := tracingopts.NewOptions()
	opts.Enabled = true
	opts.Exporter = tracingopts.ExporterStdout

	p, err := NewProvider(context.Background(), opts, "onboarding", "test")
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	_, span := p.Tracer("test").Start(context.Background(), "work")
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestUnsupportedExporter(t *testing.T) {
	opts := tracingopts.NewOptions()
	opts.Enabled = true
	opts.Exporter = "zipkin"

	_, err := NewProvider(context.Background(), opts, "onboarding", "test")
	assert.Error(t, err)
}

func TestStartEnd(t *testing.T) {
	rec := useRecorder(t)

	ctx, span := Start(context.Background(), "test", "ok", attribute.String("employee.id", "e1"))
	assert.NotEmpty(t, TraceID(ctx))
	End(span, nil)

	_, span = Start(context.Background(), "test", "failed")
	End(span, errors.New("boom"))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "ok", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("employee.id", "e1"))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)

	assert.Empty(t, TraceID(context.Background()))
}

package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

func TestOperationSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	env := newTestEnv(t, nil)
	ctx := context.Background()

	_, err := env.svc.Ingester.Ingest(ctx, "handbook", "Badges are issued at reception.")
	require.NoError(t, err)

	env.chat.err = errors.ErrCompletionTimeout
	_, err = env.svc.Answerer.Answer(ctx, &AnswerRequest{Question: "Where are badges issued?"})
	require.Error(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "onboarding.ingest", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("ingest.chunks", 1))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "onboarding.answer", spans[1].Name())
	assert.Contains(t, spans[1].Attributes(), attribute.Int("answer.context_chunks", 1))
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

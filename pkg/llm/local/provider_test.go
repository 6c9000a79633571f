package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/onboarding-assistant/pkg/llm"
)

func cosine(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"don't", "forget", "the", "vpn", "setup", "2"}, Tokenize("Don’t forget the VPN setup! (2)"))
	assert.Empty(t, Tokenize("  ... "))
}

func TestEmbedDeterministicAndNormalized(t *testing.T) {
	p := New(64)
	ctx := context.Background()

	a, err := p.EmbedSingle(ctx, "badge pickup at reception")
	require.NoError(t, err)
	b, err := p.EmbedSingle(ctx, "badge pickup at reception")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, cosine(a, a), 1e-5)
}

func TestEmbedSimilarity(t *testing.T) {
	p := New(DefaultDimension)
	vecs, err := p.Embed(context.Background(), []string{
		"configure the vpn client",
		"vpn client configuration steps",
		"lunch menu for friday",
	})
	require.NoError(t, err)

	assert.Greater(t, cosine(vecs[0], vecs[1]), cosine(vecs[0], vecs[2]))
}

func TestEmbedEmptyText(t *testing.T) {
	v, err := New(8).EmbedSingle(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), v)
}

func TestComplete(t *testing.T) {
	p, err := llm.NewChatProvider(ProviderName, map[string]any{"reply": "fixed"})
	require.NoError(t, err)

	out, err := p.Complete(context.Background(), llm.CompletionRequest{Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", out.Content)

	echo := New(8)
	out, err = echo.Complete(context.Background(), llm.CompletionRequest{Prompt: "echo me"})
	require.NoError(t, err)
	assert.Equal(t, "echo me", out.Content)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(8).Embed(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}

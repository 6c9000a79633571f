package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider 模拟供应商实现，用于测试。
type mockProvider struct {
	name string
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{0.1, 0.2, 0.3}
	}
	return result, nil
}

func (m *mockProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockProvider) Complete(_ context.Context, req CompletionRequest) (*Completion, error) {
	return &Completion{Content: "mock: " + req.Prompt}, nil
}

func TestRegisterAndNewProvider(t *testing.T) {
	RegisterProvider("test-provider", func(config map[string]any) (Provider, error) {
		name := "test-provider"
		if n, ok := config["name"].(string); ok {
			name = n
		}
		return &mockProvider{name: name}, nil
	})

	provider, err := NewProvider("test-provider", map[string]any{"name": "custom-name"})
	require.NoError(t, err)
	assert.Equal(t, "custom-name", provider.Name())
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("unknown-provider", nil)
	assert.Error(t, err)

	_, err = NewEmbeddingProvider("unknown-provider", nil)
	assert.Error(t, err)

	_, err = NewChatProvider("unknown-provider", nil)
	assert.Error(t, err)
}

func TestDedicatedFactoryWins(t *testing.T) {
	RegisterProvider("mixed", func(map[string]any) (Provider, error) {
		return &mockProvider{name: "full"}, nil
	})
	RegisterEmbeddingProvider("mixed", func(map[string]any) (EmbeddingProvider, error) {
		return &mockProvider{name: "embed-only"}, nil
	})

	e, err := NewEmbeddingProvider("mixed", nil)
	require.NoError(t, err)
	assert.Equal(t, "embed-only", e.Name())

	// 没有专用 Chat 工厂时回退到完整供应商
	c, err := NewChatProvider("mixed", nil)
	require.NoError(t, err)
	assert.Equal(t, "full", c.Name())

	out, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "mock: hi", out.Content)
}

func TestListProvidersSortedUnique(t *testing.T) {
	RegisterChatProvider("zz-chat", func(map[string]any) (ChatProvider, error) {
		return &mockProvider{name: "zz-chat"}, nil
	})
	RegisterProvider("aa-full", func(map[string]any) (Provider, error) {
		return &mockProvider{name: "aa-full"}, nil
	})
	RegisterEmbeddingProvider("aa-full", func(map[string]any) (EmbeddingProvider, error) {
		return &mockProvider{name: "aa-full"}, nil
	})

	names := ListProviders()
	assert.Contains(t, names, "zz-chat")
	assert.IsNonDecreasing(t, names)

	count := 0
	for _, n := range names {
		if n == "aa-full" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

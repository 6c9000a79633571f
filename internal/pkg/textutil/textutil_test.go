package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindows(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		size    int
		overlap int
		want    []Span
	}{
		{"空文本", 0, 10, 2, nil},
		{"短于窗口", 5, 10, 2, []Span{{0, 5}}},
		{"恰好等于窗口", 10, 10, 2, []Span{{0, 10}}},
		{"2500 字符", 2500, 1000, 200, []Span{{0, 1000}, {800, 1800}, {1600, 2500}}},
		{"末窗口恰好对齐", 1800, 1000, 200, []Span{{0, 1000}, {800, 1800}}},
		{"无重叠", 25, 10, 0, []Span{{0, 10}, {10, 20}, {20, 25}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Windows(tt.n, tt.size, tt.overlap))
		})
	}
}

func TestWindowCountFormula(t *testing.T) {
	for n := 11; n < 200; n++ {
		got := len(Windows(n, 10, 3))
		want := (n - 3 + 6) / 7 // ceil((n-overlap)/(size-overlap))
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestSplitIntoChunksRunes(t *testing.T) {
	text := strings.Repeat("入职", 6) // 12 runes
	chunks := SplitIntoChunks(text, 5, 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-1:]), string(cur[:1]), "consecutive chunks share the overlap")
	}
	assert.Equal(t, "入职入职入", chunks[0])
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, CosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, CosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", Snippet("a\n b\t\tc", 10))
	assert.Equal(t, "abc...", Snippet("abcdef", 3))
}

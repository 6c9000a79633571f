// Package textutil 提供检索相关的文本处理工具函数。
package textutil

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Span is a half-open rune range [Start, End).
type Span struct {
	Start int
	End   int
}

// Windows returns the sliding windows over n runes. Windows start at
// multiples of size-overlap and the last one ends at n. Callers must ensure
// size > 0 and 0 <= overlap < size.
func Windows(n, size, overlap int) []Span {
	if n == 0 {
		return nil
	}
	if n <= size {
		return []Span{{0, n}}
	}

	step := size - overlap
	spans := make([]Span, 0, (n-overlap+step-1)/step)
	for start := 0; ; start += step {
		end := min(start+size, n)
		spans = append(spans, Span{start, end})
		if end == n {
			break
		}
	}
	return spans
}

// SplitIntoChunks 将文本按 rune 分割成重叠的块。
func SplitIntoChunks(text string, size, overlap int) []string {
	runes := []rune(text)
	spans := Windows(len(runes), size, overlap)
	chunks := make([]string, len(spans))
	for i, s := range spans {
		chunks[i] = string(runes[s.Start:s.End])
	}
	return chunks
}

// CosineSimilarity 计算两个向量的余弦相似度。
// 返回值范围为 [-1, 1]，维度不一致或零向量返回 0。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// Snippet 返回折叠空白后的前 maxLen 个字符，截断时追加省略号。
func Snippet(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return TruncateString(s, maxLen) + "..."
}

// RuneLen 返回字符数。
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

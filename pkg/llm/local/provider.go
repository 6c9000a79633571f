// Package local 提供无需外部服务的确定性 Embedding 与 Completion 实现。
//
// Embedding 采用哈希词袋：分词后按 FNV-1a 哈希映射到固定维度并做 L2 归一化，
// 相同文本总是得到相同向量，共享词越多余弦相似度越高。
// 适用于开发环境、离线演示与测试。
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/kart-io/onboarding-assistant/pkg/llm"
)

// ProviderName 本地供应商名称。
const ProviderName = "local"

// DefaultDimension 默认向量维度。
const DefaultDimension = 256

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

func init() {
	llm.RegisterProvider(ProviderName, NewProvider)
}

// Provider 本地确定性供应商。
type Provider struct {
	dimension int
	// reply 非空时 Complete 固定返回该内容，否则回显提示词。
	reply string
}

// NewProvider 从配置 map 创建本地供应商。
func NewProvider(config map[string]any) (llm.Provider, error) {
	dim := DefaultDimension
	if v, ok := config["dimension"].(int); ok && v > 0 {
		dim = v
	}
	p := New(dim)
	if v, ok := config["reply"].(string); ok {
		p.reply = v
	}
	return p, nil
}

// New 创建指定维度的本地供应商。
func New(dimension int) *Provider {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Provider{dimension: dimension}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

// Dimension 返回向量维度。
func (p *Provider) Dimension() int {
	return p.dimension
}

// Embed 为多个文本生成向量嵌入。
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = p.vector(text)
	}
	return out, nil
}

// EmbedSingle 为单个文本生成向量嵌入。
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.vector(text), nil
}

// Complete 返回固定回复或回显提示词。
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	if err := ctx.Err(); err != nil {
		return nil, llm.Classify(err)
	}
	content := p.reply
	if content == "" {
		content = req.Prompt
	}
	if strings.TrimSpace(content) == "" {
		return nil, llm.EmptyCompletion(ProviderName)
	}
	return &llm.Completion{Content: content, Model: ProviderName}, nil
}

// Tokenize 将文本切分为小写词元。
func Tokenize(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	for i, tok := range tokens {
		tokens[i] = strings.ReplaceAll(tok, "’", "'")
	}
	return tokens
}

func (p *Provider) vector(text string) []float32 {
	vec := make([]float32, p.dimension)
	for _, tok := range Tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum % uint32(p.dimension))
		// 高位决定符号，降低哈希冲突带来的偏差
		if sum&0x80000000 != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

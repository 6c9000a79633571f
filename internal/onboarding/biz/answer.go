package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/internal/pkg/textutil"
	"github.com/kart-io/onboarding-assistant/pkg/infra/tracing"
	"github.com/kart-io/onboarding-assistant/pkg/llm"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// NotFoundAnswer is the answer when no knowledge-base chunk fits the question.
const NotFoundAnswer = "I could not find any information about this in the onboarding knowledge base."

const answerSystemPrompt = `You are an employee onboarding assistant. Answer the new employee's question using only the numbered context passages from company documents. Do not use outside knowledge and do not invent policies, names or dates. If the passages do not contain the answer, reply exactly: "` + NotFoundAnswer + `"`

// AnswerOptions 问答配置。
type AnswerOptions struct {
	// TopK 检索的块数。
	TopK int
	// ContextBudget 上下文字符数上限，超出时从相似度最低的块开始丢弃。
	ContextBudget int
	// MaxTokens 补全的最大 token 数。
	MaxTokens int
	// Timeout 单次补全调用的超时时间。
	Timeout time.Duration
	// SnippetLength 引用片段长度。
	SnippetLength int
}

// DefaultAnswerOptions 返回默认问答配置。
func DefaultAnswerOptions() *AnswerOptions {
	return &AnswerOptions{
		TopK:          5,
		ContextBudget: 6000,
		MaxTokens:     1024,
		Timeout:       60 * time.Second,
		SnippetLength: 200,
	}
}

// AnswerRequest is a knowledge-base question.
type AnswerRequest struct {
	Question string
	Filter   Filter
	// EmployeeID 可选，非空时把员工信息加入提示词。
	EmployeeID string
}

// Answerer answers questions from the indexed documents.
type Answerer struct {
	index     *Index
	chat      llm.ChatProvider
	employees store.EmployeeStore
	cache     AnswerCache
	metrics   *metrics.Metrics
	opts      *AnswerOptions
}

// NewAnswerer 创建问答组件。cache 与 m 可为 nil。
func NewAnswerer(
	index *Index,
	chat llm.ChatProvider,
	employees store.EmployeeStore,
	cache AnswerCache,
	m *metrics.Metrics,
	opts *AnswerOptions,
) *Answerer {
	if opts == nil {
		opts = DefaultAnswerOptions()
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &Answerer{
		index:     index,
		chat:      chat,
		employees: employees,
		cache:     cache,
		metrics:   m,
		opts:      opts,
	}
}

// Answer retrieves the top chunks for the question, fits them into the
// context budget in descending similarity and asks the completion service.
// Citations are exactly the chunks placed in the context. With no chunk in
// the context the prompt demands NotFoundAnswer and that sentence is
// returned. A completion failure returns ErrAnswerGenerationFailed wrapping
// the classified cause; there is no fallback answer.
func (a *Answerer) Answer(ctx context.Context, req *AnswerRequest) (_ *model.Answer, err error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return nil, errors.ErrEmptyQuestion
	}

	ctx, span := tracing.Start(ctx, tracerName, "onboarding.answer",
		attribute.String("employee.id", req.EmployeeID),
		attribute.String("filter.source_document_id", req.Filter.SourceDocumentID),
	)
	defer func() { tracing.End(span, err) }()

	if cached, _ := a.cache.Get(ctx, req); cached != nil {
		cached.Cached = true
		a.metrics.RecordAnswer(metrics.ResultCached)
		return cached, nil
	}

	var emp *model.Employee
	if req.EmployeeID != "" {
		if emp, err = a.employees.Get(ctx, req.EmployeeID); err != nil {
			return nil, err
		}
	}

	hits, err := a.index.Query(ctx, req.Question, a.opts.TopK, req.Filter)
	if err != nil {
		a.metrics.RecordAnswer(metrics.ResultError)
		return nil, err
	}
	included := fitContext(hits, a.opts.ContextBudget)
	span.SetAttributes(attribute.Int("answer.hits", len(hits)), attribute.Int("answer.context_chunks", len(included)))
	if dropped := len(hits) - len(included); dropped > 0 {
		logger.Debugw("context budget exceeded, dropped lowest-similarity chunks",
			"dropped", dropped, "budget", a.opts.ContextBudget)
	}

	text, err := a.complete(ctx, buildAnswerPrompt(req.Question, emp, included))
	if err != nil {
		a.metrics.RecordAnswer(metrics.ResultError)
		return nil, errors.ErrAnswerGenerationFailed.WithCause(err)
	}

	answer := &model.Answer{
		Text:        text,
		Citations:   make([]model.Citation, 0, len(included)),
		ContextUsed: len(included) > 0,
	}
	if !answer.ContextUsed {
		if text != NotFoundAnswer {
			logger.Warnw("model ignored the not-found instruction, answer replaced", "reply_length", len(text))
		}
		answer.Text = NotFoundAnswer
		a.metrics.RecordAnswer(metrics.ResultNotFound)
		return answer, nil
	}

	for _, c := range included {
		answer.Citations = append(answer.Citations, model.Citation{
			ChunkID:          c.ChunkID,
			SourceDocumentID: c.Metadata.SourceDocumentID,
			Snippet:          textutil.Snippet(c.Text, a.opts.SnippetLength),
			Score:            c.Score,
		})
	}

	if err := a.cache.Set(ctx, req, answer); err != nil {
		logger.Warnw("failed to cache answer", "error", err.Error())
	}
	a.metrics.RecordAnswer(metrics.ResultOK)
	logger.Infow("question answered", "citations", len(answer.Citations), "answer_length", len(answer.Text))
	return answer, nil
}

func (a *Answerer) complete(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.chat.Complete(cctx, llm.CompletionRequest{
		SystemPrompt: answerSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    a.opts.MaxTokens,
	})
	if err != nil {
		err = llm.Classify(err)
		a.metrics.ObserveCompletion("answer", time.Since(start), 0, 0, err)
		logger.Errorw("answer completion failed", "provider", a.chat.Name(), "error", err.Error())
		return "", err
	}

	var promptTokens, completionTokens int
	if resp.TokenUsage != nil {
		promptTokens, completionTokens = resp.TokenUsage.PromptTokens, resp.TokenUsage.CompletionTokens
	}
	a.metrics.ObserveCompletion("answer", time.Since(start), promptTokens, completionTokens, nil)

	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", llm.EmptyCompletion(a.chat.Name())
	}
	return text, nil
}

// fitContext keeps the longest prefix of hits (already in descending
// similarity) whose combined text fits budget characters, so the
// lowest-similarity chunks are dropped first. When even the most similar
// chunk exceeds the budget it is cut to budget characters instead of
// being dropped, so a matched index never yields an empty context.
func fitContext(hits []ScoredChunk, budget int) []ScoredChunk {
	used := 0
	for i, h := range hits {
		used += textutil.RuneLen(h.Text)
		if budget > 0 && used > budget {
			if i == 0 {
				top := h
				top.Text = textutil.TruncateString(h.Text, budget)
				return []ScoredChunk{top}
			}
			return hits[:i]
		}
	}
	return hits
}

func buildAnswerPrompt(question string, emp *model.Employee, chunks []ScoredChunk) string {
	var b strings.Builder

	if emp != nil {
		fmt.Fprintf(&b, "Employee: %s, role %s, department %s.\n\n", emp.Name, emp.Role, orNA(emp.Department))
	}

	if len(chunks) == 0 {
		b.WriteString("No passage in the onboarding knowledge base is relevant to this question.\n")
		b.WriteString("Reply with exactly the following sentence and nothing else:\n")
		b.WriteString(NotFoundAnswer)
		b.WriteString("\n\nQuestion: ")
		b.WriteString(question)
		return b.String()
	}

	b.WriteString("Context passages:\n\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d] (%s)\n%s\n\n", i+1, c.ChunkID, c.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer clearly and concisely, citing passage numbers like [1].")
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

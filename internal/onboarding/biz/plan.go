package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/event"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/internal/pkg/textutil"
	"github.com/kart-io/onboarding-assistant/pkg/infra/tracing"
	"github.com/kart-io/onboarding-assistant/pkg/llm"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// GeneralPlanQuery is the knowledge-base query for role-independent material.
const GeneralPlanQuery = "general onboarding information"

const planSystemPrompt = `You are an employee onboarding assistant that writes personalized onboarding plans. Base the plan on the company context passages when they are relevant and keep every checklist item a single concrete action the new employee can mark as done.`

// PlanOptions 计划生成配置。
type PlanOptions struct {
	RoleTopK    int
	GeneralTopK int
	// ContextBudget 上下文字符数上限，超出时从合并结果末尾开始丢弃。
	ContextBudget int
	MaxTokens     int
	Timeout       time.Duration
}

// DefaultPlanOptions 返回默认计划生成配置。
func DefaultPlanOptions() *PlanOptions {
	return &PlanOptions{
		RoleTopK:      10,
		GeneralTopK:   5,
		ContextBudget: 12000,
		MaxTokens:     2048,
		Timeout:       120 * time.Second,
	}
}

// PlanResult is a saved plan with its checklist.
type PlanResult struct {
	Plan      *model.OnboardingPlan  `json:"plan"`
	Checklist []*model.ChecklistItem `json:"checklist"`
}

// PlanGenerator builds personalized onboarding plans.
type PlanGenerator struct {
	index     *Index
	chat      llm.ChatProvider
	employees store.EmployeeStore
	plans     store.PlanStore
	publisher event.Publisher
	metrics   *metrics.Metrics
	opts      *PlanOptions
}

// NewPlanGenerator 创建计划生成器。publisher 与 m 可为 nil。
func NewPlanGenerator(
	index *Index,
	chat llm.ChatProvider,
	employees store.EmployeeStore,
	plans store.PlanStore,
	publisher event.Publisher,
	m *metrics.Metrics,
	opts *PlanOptions,
) *PlanGenerator {
	if opts == nil {
		opts = DefaultPlanOptions()
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &PlanGenerator{
		index:     index,
		chat:      chat,
		employees: employees,
		plans:     plans,
		publisher: publisher,
		metrics:   m,
		opts:      opts,
	}
}

// RoleQuery returns the role-scoped knowledge-base query for an employee.
func RoleQuery(emp *model.Employee) string {
	return fmt.Sprintf("onboarding tasks for role=%s department=%s", emp.Role, emp.Department)
}

// Generate creates a new plan version for the employee:
//  1. the role and general queries run concurrently;
//  2. role hits precede general hits, duplicates keep the role occurrence;
//  3. the completion must follow the strict plan format;
//  4. plan and checklist (task_1..task_n, all pending) are saved atomically.
//
// A malformed response returns ErrPlanParseFailed with the raw response kept
// in the wrapped *ParseError; nothing is saved in that case.
func (g *PlanGenerator) Generate(ctx context.Context, employeeID string) (_ *PlanResult, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "onboarding.plan.generate", attribute.String("employee.id", employeeID))
	defer func() { tracing.End(span, err) }()

	emp, err := g.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	chunks, err := g.retrieve(ctx, emp)
	if err != nil {
		g.metrics.RecordPlan(metrics.ResultError)
		return nil, err
	}
	chunks = fitContext(chunks, g.opts.ContextBudget)

	raw, err := g.complete(ctx, buildPlanPrompt(emp, chunks))
	if err != nil {
		g.metrics.RecordPlan(metrics.ResultError)
		return nil, errors.ErrPlanGenerationFailed.WithCause(err)
	}

	parsed, err := ParsePlan(raw)
	if err != nil {
		g.metrics.RecordPlan(metrics.ResultParseFailed)
		logger.Warnw("plan response rejected",
			"employee_id", employeeID,
			"reason", err.Error(),
			"raw_response", textutil.TruncateString(raw, 2000),
		)
		return nil, errors.ErrPlanParseFailed.WithCause(err)
	}

	plan := &model.OnboardingPlan{
		EmployeeID:  emp.EmployeeID,
		Sections:    parsed.Sections,
		RawResponse: raw,
	}
	items := make([]*model.ChecklistItem, len(parsed.Items))
	for i, it := range parsed.Items {
		items[i] = &model.ChecklistItem{
			EmployeeID:  emp.EmployeeID,
			TaskID:      fmt.Sprintf("task_%d", i+1),
			Section:     it.Group,
			Description: it.Description,
			Status:      model.TaskStatusPending,
		}
	}

	if err := g.plans.SavePlan(ctx, plan, items); err != nil {
		g.metrics.RecordPlan(metrics.ResultError)
		return nil, err
	}

	g.metrics.RecordPlan(metrics.ResultOK)
	if err := g.publisher.Publish(ctx, event.New(event.TypePlanGenerated, emp.EmployeeID, map[string]any{
		"employee_id": emp.EmployeeID,
		"plan_id":     plan.ID,
		"version":     plan.Version,
		"task_count":  len(items),
		"start_date":  emp.StartDate,
	})); err != nil {
		logger.Warnw("failed to publish plan event", "employee_id", emp.EmployeeID, "error", err.Error())
	}
	logger.Infow("onboarding plan generated",
		"employee_id", emp.EmployeeID,
		"plan_id", plan.ID,
		"version", plan.Version,
		"sections", len(plan.Sections),
		"tasks", len(items),
		"context_chunks", len(chunks),
	)
	return &PlanResult{Plan: plan, Checklist: items}, nil
}

// GetPlan returns the latest plan version with its checklist.
func (g *PlanGenerator) GetPlan(ctx context.Context, employeeID string) (*PlanResult, error) {
	if _, err := g.employees.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	plan, items, err := g.plans.Latest(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan, Checklist: items}, nil
}

// retrieve 并发执行角色查询与通用查询，任一失败即返回。
func (g *PlanGenerator) retrieve(ctx context.Context, emp *model.Employee) ([]ScoredChunk, error) {
	var roleHits, generalHits []ScoredChunk

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		roleHits, err = g.index.Query(egCtx, RoleQuery(emp), g.opts.RoleTopK, Filter{})
		return err
	})
	eg.Go(func() error {
		var err error
		generalHits, err = g.index.Query(egCtx, GeneralPlanQuery, g.opts.GeneralTopK, Filter{})
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return MergeResults(roleHits, generalHits), nil
}

// MergeResults returns role hits followed by general hits, each keeping its
// own order, with duplicate chunk ids dropped after their first occurrence.
func MergeResults(role, general []ScoredChunk) []ScoredChunk {
	seen := make(map[string]struct{}, len(role)+len(general))
	out := make([]ScoredChunk, 0, len(role)+len(general))
	for _, list := range [][]ScoredChunk{role, general} {
		for _, c := range list {
			if _, ok := seen[c.ChunkID]; ok {
				continue
			}
			seen[c.ChunkID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func (g *PlanGenerator) complete(ctx context.Context, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.chat.Complete(cctx, llm.CompletionRequest{
		SystemPrompt: planSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    g.opts.MaxTokens,
	})
	if err != nil {
		err = llm.Classify(err)
		g.metrics.ObserveCompletion("plan", time.Since(start), 0, 0, err)
		logger.Errorw("plan completion failed", "provider", g.chat.Name(), "error", err.Error())
		return "", err
	}

	var promptTokens, completionTokens int
	if resp.TokenUsage != nil {
		promptTokens, completionTokens = resp.TokenUsage.PromptTokens, resp.TokenUsage.CompletionTokens
	}
	g.metrics.ObserveCompletion("plan", time.Since(start), promptTokens, completionTokens, nil)

	if strings.TrimSpace(resp.Content) == "" {
		return "", llm.EmptyCompletion(g.chat.Name())
	}
	return resp.Content, nil
}

func buildPlanPrompt(emp *model.Employee, chunks []ScoredChunk) string {
	var b strings.Builder

	b.WriteString("Create a personalized onboarding plan for this new employee.\n\n")
	fmt.Fprintf(&b, "Name: %s\nRole: %s\nDepartment: %s\n", emp.Name, emp.Role, orNA(emp.Department))
	if !emp.StartDate.IsZero() {
		fmt.Fprintf(&b, "Start date: %s\n", emp.StartDate.Format("2006-01-02"))
	}

	b.WriteString("\nCompany context passages:\n\n")
	if len(chunks) == 0 {
		b.WriteString("(none available, use general onboarding best practices)\n\n")
	}
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d]\n%s\n\n", i+1, c.Text)
	}

	b.WriteString("Cover the first weeks phase by phase, the training to complete, the people to meet and the documents to review.\n\n")
	b.WriteString(planFormat)
	return b.String()
}

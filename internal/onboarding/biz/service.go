package biz

import (
	"context"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/event"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/infra/pool"
	"github.com/kart-io/onboarding-assistant/pkg/llm"
)

// Dependencies 服务依赖。Cache、Publisher、Metrics 与 Workers 可为 nil。
type Dependencies struct {
	Store     store.Factory
	Vectors   store.VectorStore
	Embedder  llm.EmbeddingProvider
	Chat      llm.ChatProvider
	Cache     AnswerCache
	Publisher event.Publisher
	Metrics   *metrics.Metrics
	Workers   *pool.Pool
}

// ServiceConfig 服务配置，nil 字段使用默认值。
type ServiceConfig struct {
	Ingest *IngestOptions
	Answer *AnswerOptions
	Plan   *PlanOptions
}

// Service 组合各业务组件。
type Service struct {
	Index     *Index
	Ingester  *Ingester
	Answerer  *Answerer
	Plans     *PlanGenerator
	Checklist *ChecklistService
	Employees *EmployeeService
	Reminders *ReminderService

	workers *pool.Pool
	docs    store.DocumentStore
}

// NewService wires every component over shared dependencies.
func NewService(deps *Dependencies, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = &ServiceConfig{}
	}

	index := NewIndex(deps.Vectors, deps.Embedder, deps.Metrics)
	plans := NewPlanGenerator(index, deps.Chat, deps.Store.Employees(), deps.Store.Plans(), deps.Publisher, deps.Metrics, cfg.Plan)

	return &Service{
		Index:     index,
		Ingester:  NewIngester(deps.Store.Documents(), index, deps.Workers, deps.Publisher, deps.Cache, deps.Metrics, cfg.Ingest),
		Answerer:  NewAnswerer(index, deps.Chat, deps.Store.Employees(), deps.Cache, deps.Metrics, cfg.Answer),
		Plans:     plans,
		Checklist: NewChecklistService(deps.Store.Plans(), plans, deps.Publisher, deps.Metrics),
		Employees: NewEmployeeService(deps.Store.Employees(), deps.Cache),
		Reminders: NewReminderService(deps.Store.Employees(), deps.Store.Reminders()),
		workers:   deps.Workers,
		docs:      deps.Store.Documents(),
	}
}

// Stats reports knowledge-base and worker pool figures.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	chunks, err := s.Index.Stats(ctx)
	if err != nil {
		return nil, err
	}
	docs, _, err := s.docs.List(ctx, 0, 1)
	if err != nil {
		return nil, err
	}

	stats := map[string]any{
		"documents": docs,
		"chunks":    chunks,
	}
	if s.workers != nil {
		stats["ingest_pool"] = s.workers.Stats()
	}
	return stats, nil
}

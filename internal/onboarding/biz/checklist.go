package biz

import (
	"context"
	"math"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/event"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// ChecklistService tracks progress on the latest plan's checklist.
type ChecklistService struct {
	plans     store.PlanStore
	generator *PlanGenerator
	publisher event.Publisher
	metrics   *metrics.Metrics
}

// NewChecklistService 创建清单服务。
func NewChecklistService(plans store.PlanStore, generator *PlanGenerator, publisher event.Publisher, m *metrics.Metrics) *ChecklistService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &ChecklistService{plans: plans, generator: generator, publisher: publisher, metrics: m}
}

// GetOrGenerate returns the latest plan with its checklist, generating a
// plan first when the employee has none.
func (s *ChecklistService) GetOrGenerate(ctx context.Context, employeeID string) (*PlanResult, error) {
	res, err := s.generator.GetPlan(ctx, employeeID)
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, errors.ErrPlanNotFound) {
		return nil, err
	}

	logger.Infow("no plan yet, generating one", "employee_id", employeeID)
	return s.generator.Generate(ctx, employeeID)
}

// UpdateTaskStatus sets the status of a task in the latest plan. completed
// stamps completed_at, pending clears it. A nil notes leaves notes unchanged.
func (s *ChecklistService) UpdateTaskStatus(ctx context.Context, employeeID, taskID, status string, notes *string) (*model.ChecklistItem, error) {
	var completedAt *time.Time
	switch status {
	case model.TaskStatusCompleted:
		now := time.Now().UTC()
		completedAt = &now
	case model.TaskStatusPending:
	default:
		return nil, errors.ErrInvalidTaskStatus.WithMessagef("invalid task status %q", status)
	}

	plan, _, err := s.plans.Latest(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	item, err := s.plans.UpdateItem(ctx, plan.ID, taskID, store.ItemUpdate{
		Status:      status,
		CompletedAt: completedAt,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTaskUpdate(status)
	if err := s.publisher.Publish(ctx, event.New(event.TypeTaskUpdated, employeeID, map[string]any{
		"employee_id": employeeID,
		"plan_id":     plan.ID,
		"task_id":     taskID,
		"status":      status,
	})); err != nil {
		logger.Warnw("failed to publish task event", "employee_id", employeeID, "error", err.Error())
	}
	logger.Infow("checklist task updated", "employee_id", employeeID, "task_id", taskID, "status", status)
	return item, nil
}

// Progress summarizes the latest checklist.
func (s *ChecklistService) Progress(ctx context.Context, employeeID string) (*model.Progress, error) {
	plan, items, err := s.plans.Latest(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return summarize(employeeID, plan.ID, items), nil
}

func summarize(employeeID string, planID uint64, items []*model.ChecklistItem) *model.Progress {
	p := &model.Progress{EmployeeID: employeeID, PlanID: planID, Total: len(items)}
	for _, it := range items {
		if it.Status == model.TaskStatusCompleted {
			p.Completed++
		}
	}
	p.Pending = p.Total - p.Completed
	if p.Total > 0 {
		p.Percent = math.Round(float64(p.Completed)*1000/float64(p.Total)) / 10
	}
	return p
}

package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/utils/id"
)

// WelcomeMessage is the text of the welcome reminder.
const WelcomeMessage = "Welcome to the company! Your personalized onboarding plan is ready. " +
	"Please check your onboarding portal to get started."

// EmployeeService manages employee records.
type EmployeeService struct {
	employees store.EmployeeStore
	cache     AnswerCache
}

// NewEmployeeService 创建员工服务。cache 为 nil 时不缓存。
func NewEmployeeService(employees store.EmployeeStore, cache AnswerCache) *EmployeeService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &EmployeeService{employees: employees, cache: cache}
}

// Create registers a new employee and stores a welcome email reminder at
// the start date. A taken employee id returns ErrEmployeeExists.
func (s *EmployeeService) Create(ctx context.Context, req *model.CreateEmployeeRequest) (*model.Employee, error) {
	emp := &model.Employee{
		EmployeeID: req.EmployeeID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       req.Role,
		Department: req.Department,
		StartDate:  req.StartDate.UTC(),
		Status:     model.EmployeeStatusActive,
	}

	var reminders []*model.Reminder
	if !emp.StartDate.IsZero() {
		reminders = append(reminders, &model.Reminder{
			ID:           id.NewWithPrefix("rem"),
			EmployeeID:   emp.EmployeeID,
			ReminderType: model.ReminderTypeWelcome,
			Message:      WelcomeMessage,
			Channel:      "email",
			ScheduledAt:  emp.StartDate,
			Status:       model.ReminderStatusPending,
		})
	}
	if err := s.employees.Create(ctx, emp, reminders...); err != nil {
		return nil, err
	}
	logger.Infow("employee created", "employee_id", emp.EmployeeID, "role", emp.Role, "reminders", len(reminders))
	return emp, nil
}

// Get returns an employee.
func (s *EmployeeService) Get(ctx context.Context, employeeID string) (*model.Employee, error) {
	return s.employees.Get(ctx, employeeID)
}

// List returns employees, most recent start date first.
func (s *EmployeeService) List(ctx context.Context, offset, limit int) (int64, []*model.Employee, error) {
	return s.employees.List(ctx, offset, limit)
}

// Update applies the non-nil fields of req.
func (s *EmployeeService) Update(ctx context.Context, employeeID string, req *model.UpdateEmployeeRequest) (*model.Employee, error) {
	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Email != nil {
		emp.Email = *req.Email
	}
	if req.Phone != nil {
		emp.Phone = *req.Phone
	}
	if req.Role != nil {
		emp.Role = *req.Role
	}
	if req.Department != nil {
		emp.Department = *req.Department
	}
	if req.StartDate != nil {
		emp.StartDate = req.StartDate.UTC()
	}
	if req.Status != nil {
		emp.Status = *req.Status
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, err
	}
	s.invalidateAnswers(ctx, employeeID)
	return emp, nil
}

// Delete removes an employee with plans, checklist and reminders.
func (s *EmployeeService) Delete(ctx context.Context, employeeID string) error {
	if err := s.employees.Delete(ctx, employeeID); err != nil {
		return err
	}
	s.invalidateAnswers(ctx, employeeID)
	logger.Infow("employee deleted", "employee_id", employeeID)
	return nil
}

// 个性化答案的提示词含员工角色与部门，员工变更后需失效。
func (s *EmployeeService) invalidateAnswers(ctx context.Context, employeeID string) {
	if err := s.cache.ClearEmployee(ctx, employeeID); err != nil {
		logger.Warnw("failed to clear cached answers", "employee_id", employeeID, "error", err.Error())
	}
}

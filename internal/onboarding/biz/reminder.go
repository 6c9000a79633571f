package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/utils/id"
)

// DefaultPendingLimit bounds PendingReminders when no limit is given.
const DefaultPendingLimit = 100

// ReminderService stores reminder records. Delivery happens elsewhere.
type ReminderService struct {
	employees store.EmployeeStore
	reminders store.ReminderStore
}

// NewReminderService 创建提醒服务。
func NewReminderService(employees store.EmployeeStore, reminders store.ReminderStore) *ReminderService {
	return &ReminderService{employees: employees, reminders: reminders}
}

// AddReminder schedules a reminder for an existing employee.
func (s *ReminderService) AddReminder(ctx context.Context, employeeID string, req *model.CreateReminderRequest) (*model.Reminder, error) {
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return nil, err
	}

	r := &model.Reminder{
		ID:           id.NewWithPrefix("rem"),
		EmployeeID:   employeeID,
		ReminderType: req.ReminderType,
		Message:      req.Message,
		Channel:      req.Channel,
		ScheduledAt:  req.ScheduledAt.UTC(),
		Status:       model.ReminderStatusPending,
	}
	if err := s.reminders.Create(ctx, r); err != nil {
		return nil, err
	}
	logger.Infow("reminder scheduled", "reminder_id", r.ID, "employee_id", employeeID, "scheduled_at", r.ScheduledAt)
	return r, nil
}

// ListReminders returns an employee's reminders by schedule.
func (s *ReminderService) ListReminders(ctx context.Context, employeeID string) ([]*model.Reminder, error) {
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.reminders.ListByEmployee(ctx, employeeID)
}

// PendingReminders returns unsent reminders due at or before before.
func (s *ReminderService) PendingReminders(ctx context.Context, before time.Time, limit int) ([]*model.Reminder, error) {
	if limit <= 0 {
		limit = DefaultPendingLimit
	}
	return s.reminders.Pending(ctx, before.UTC(), limit)
}

// MarkReminderSent records that a reminder was delivered.
func (s *ReminderService) MarkReminderSent(ctx context.Context, reminderID string) error {
	return s.reminders.MarkSent(ctx, reminderID, time.Now().UTC())
}

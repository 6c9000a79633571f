package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

type reminders struct {
	db *gorm.DB
}

func newReminders(db *gorm.DB) *reminders {
	return &reminders{db}
}

// Create creates a reminder record.
func (r *reminders) Create(ctx context.Context, rem *model.Reminder) error {
	return dbErr(r.db.WithContext(ctx).Create(rem).Error, nil)
}

// ListByEmployee lists an employee's reminders by schedule.
func (r *reminders) ListByEmployee(ctx context.Context, employeeID string) ([]*model.Reminder, error) {
	var out []*model.Reminder
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("scheduled_at").Order("id").
		Find(&out).Error
	return out, dbErr(err, nil)
}

// Pending returns unsent reminders due at or before before.
func (r *reminders) Pending(ctx context.Context, before time.Time, limit int) ([]*model.Reminder, error) {
	var out []*model.Reminder
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ?", model.ReminderStatusPending, before).
		Order("scheduled_at").Order("id").
		Limit(limit).
		Find(&out).Error
	return out, dbErr(err, nil)
}

// MarkSent records delivery of a reminder.
func (r *reminders) MarkSent(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).Updates(map[string]any{
		"status":  model.ReminderStatusSent,
		"sent_at": at,
	})
	if res.Error != nil {
		return dbErr(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errors.ErrReminderNotFound
	}
	return nil
}

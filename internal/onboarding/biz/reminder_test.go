package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

func TestReminders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.createEmployee(t, "E1", "Software Engineer", "Platform")
	svc := env.svc.Reminders

	// 入职日前一周，欢迎提醒尚未到期
	now := time.Date(2026, 10, 26, 9, 0, 0, 0, time.UTC)
	due, err := svc.AddReminder(ctx, "E1", &model.CreateReminderRequest{
		ReminderType: "task",
		Message:      "Finish security training",
		Channel:      "email",
		ScheduledAt:  now.Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Contains(t, due.ID, "rem")
	assert.Equal(t, model.ReminderStatusPending, due.Status)

	_, err = svc.AddReminder(ctx, "E1", &model.CreateReminderRequest{
		ReminderType: "weekly",
		Message:      "Weekly check-in",
		Channel:      "whatsapp",
		ScheduledAt:  now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	list, err := svc.ListReminders(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, due.ID, list[0].ID, "ordered by schedule")
	assert.Equal(t, model.ReminderTypeWelcome, list[2].ReminderType)

	pending, err := svc.PendingReminders(ctx, now, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ID, pending[0].ID)

	require.NoError(t, svc.MarkReminderSent(ctx, due.ID))
	pending, err = svc.PendingReminders(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	list, err = svc.ListReminders(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, model.ReminderStatusSent, list[0].Status)
	assert.NotNil(t, list[0].SentAt)
}

func TestReminderErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	svc := env.svc.Reminders

	_, err := svc.AddReminder(ctx, "ghost", &model.CreateReminderRequest{
		ReminderType: "daily", Message: "hi", Channel: "email", ScheduledAt: time.Now(),
	})
	assert.True(t, errors.Is(err, errors.ErrEmployeeNotFound))

	_, err = svc.ListReminders(ctx, "ghost")
	assert.True(t, errors.Is(err, errors.ErrEmployeeNotFound))

	err = svc.MarkReminderSent(ctx, "rem-missing")
	assert.True(t, errors.Is(err, errors.ErrReminderNotFound))
}

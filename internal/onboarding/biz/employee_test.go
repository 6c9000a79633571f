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

func TestEmployeeLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	svc := env.svc.Employees

	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.FixedZone("CST", 8*3600))
	emp, err := svc.Create(ctx, &model.CreateEmployeeRequest{
		EmployeeID: "E1",
		Name:       "Ada Lovelace",
		Role:       "Data Analyst",
		Department: "Finance",
		StartDate:  start,
	})
	require.NoError(t, err)
	assert.Equal(t, model.EmployeeStatusActive, emp.Status)
	assert.Equal(t, time.UTC, emp.StartDate.Location())
	assert.True(t, start.Equal(emp.StartDate))

	_, err = svc.Create(ctx, &model.CreateEmployeeRequest{EmployeeID: "E1", Name: "Dup", Role: "x", StartDate: start})
	assert.True(t, errors.Is(err, errors.ErrEmployeeExists))
	assert.False(t, errors.IsRetryable(err))

	role := "Senior Data Analyst"
	status := model.EmployeeStatusCompleted
	updated, err := svc.Update(ctx, "E1", &model.UpdateEmployeeRequest{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, role, updated.Role)
	assert.Equal(t, "Finance", updated.Department, "nil fields stay unchanged")
	assert.Equal(t, status, updated.Status)

	got, err := svc.Get(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, role, got.Role)

	total, list, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, "E1"))
	_, err = svc.Get(ctx, "E1")
	assert.True(t, errors.Is(err, errors.ErrEmployeeNotFound))

	_, err = svc.Update(ctx, "E1", &model.UpdateEmployeeRequest{Role: &role})
	assert.True(t, errors.Is(err, errors.ErrEmployeeNotFound))
}

func TestDeleteEmployeeRemovesPlan(t *testing.T) {
	ctx := context.Background()
	env, _, gen := newPlanEnv(t)
	env.createEmployee(t, "E1", "Software Engineer", "Platform")
	env.chat.reply = validPlan
	_, err := gen.Generate(ctx, "E1")
	require.NoError(t, err)

	require.NoError(t, env.svc.Employees.Delete(ctx, "E1"))

	_, _, err = env.factory.Plans().Latest(ctx, "E1")
	assert.True(t, errors.Is(err, errors.ErrPlanNotFound))
}

func TestCreateEmployeeSchedulesWelcome(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	start := time.Date(2026, 11, 2, 9, 0, 0, 0, time.FixedZone("CST", 8*3600))
	_, err := env.svc.Employees.Create(ctx, &model.CreateEmployeeRequest{
		EmployeeID: "E1",
		Name:       "Ada Lovelace",
		Role:       "Data Analyst",
		StartDate:  start,
	})
	require.NoError(t, err)

	list, err := env.svc.Reminders.ListReminders(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	welcome := list[0]
	assert.Equal(t, model.ReminderTypeWelcome, welcome.ReminderType)
	assert.Equal(t, WelcomeMessage, welcome.Message)
	assert.Equal(t, "email", welcome.Channel)
	assert.Equal(t, model.ReminderStatusPending, welcome.Status)
	assert.True(t, start.Equal(welcome.ScheduledAt))

	pending, err := env.svc.Reminders.PendingReminders(ctx, start.Add(-time.Minute), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	pending, err = env.svc.Reminders.PendingReminders(ctx, start, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// 重复创建不会留下多余的提醒
	_, err = env.svc.Employees.Create(ctx, &model.CreateEmployeeRequest{EmployeeID: "E1", Name: "Dup", Role: "x", StartDate: start})
	require.True(t, errors.Is(err, errors.ErrEmployeeExists))
	list, err = env.svc.Reminders.ListReminders(ctx, "E1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEmployeeChangesClearCachedAnswers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	cache := &memoryCache{answers: map[string]*model.Answer{}}
	employees := NewEmployeeService(env.factory.Employees(), cache)
	answerer := NewAnswerer(env.svc.Index, env.chat, env.factory.Employees(), cache, nil, nil)

	env.createEmployee(t, "E1", "Software Engineer", "Platform")
	env.createEmployee(t, "E2", "Designer", "Product")
	seedChunks(t, env, record("it", 0, "laptop setup guide"))

	ask := func(employeeID string) *model.Answer {
		ans, err := answerer.Answer(ctx, &AnswerRequest{Question: "laptop setup", EmployeeID: employeeID})
		require.NoError(t, err)
		return ans
	}
	ask("E1")
	ask("E2")
	require.True(t, ask("E1").Cached)

	role := "Engineering Manager"
	_, err := employees.Update(ctx, "E1", &model.UpdateEmployeeRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, []string{"E1"}, cache.clearedEmployees)

	calls := env.chat.calls()
	assert.False(t, ask("E1").Cached, "answer after a role change is regenerated")
	assert.Equal(t, calls+1, env.chat.calls())
	assert.Contains(t, env.chat.lastPrompt(), "Engineering Manager")
	assert.True(t, ask("E2").Cached, "other employees keep their answers")

	require.NoError(t, employees.Delete(ctx, "E2"))
	assert.Equal(t, []string{"E1", "E2"}, cache.clearedEmployees)
	_, ok := cache.answers["laptop setup||E2"]
	assert.False(t, ok)

	// 失败的更新不清缓存
	_, err = employees.Update(ctx, "ghost", &model.UpdateEmployeeRequest{Role: &role})
	assert.True(t, errors.Is(err, errors.ErrEmployeeNotFound))
	assert.Len(t, cache.clearedEmployees, 2)
}

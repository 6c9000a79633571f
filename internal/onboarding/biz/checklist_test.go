package biz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/event"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

func newChecklistEnv(t *testing.T) (*testEnv, *recordingPublisher, *ChecklistService) {
	t.Helper()
	env, pub, gen := newPlanEnv(t)
	env.createEmployee(t, "E1", "Software Engineer", "Platform")
	env.chat.reply = validPlan
	return env, pub, NewChecklistService(env.factory.Plans(), gen, pub, nil)
}

func TestGetOrGenerate(t *testing.T) {
	ctx := context.Background()
	env, _, svc := newChecklistEnv(t)

	first, err := svc.GetOrGenerate(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Plan.Version)
	assert.Len(t, first.Checklist, 3)
	assert.Equal(t, 1, env.chat.calls())

	// 已有计划时直接返回，不再生成
	second, err := svc.GetOrGenerate(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, first.Plan.ID, second.Plan.ID)
	assert.Equal(t, 1, env.chat.calls())

	_, err = svc.GetOrGenerate(ctx, "ghost")
	assert.True(t, errors.Is(err, errors.ErrEmployeeNotFound))
}

func TestUpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	_, pub, svc := newChecklistEnv(t)
	_, err := svc.GetOrGenerate(ctx, "E1")
	require.NoError(t, err)

	before := time.Now().UTC().Add(-time.Second)
	notes := "picked up on day one"
	item, err := svc.UpdateTaskStatus(ctx, "E1", "task_1", model.TaskStatusCompleted, &notes)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusCompleted, item.Status)
	assert.Equal(t, notes, item.Notes)
	require.NotNil(t, item.CompletedAt)
	assert.True(t, item.CompletedAt.After(before))

	// notes 为 nil 时保持不变，pending 清除完成时间
	item, err = svc.UpdateTaskStatus(ctx, "E1", "task_1", model.TaskStatusPending, nil)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, item.Status)
	assert.Nil(t, item.CompletedAt)
	assert.Equal(t, notes, item.Notes)

	assert.Equal(t, []string{event.TypePlanGenerated, event.TypeTaskUpdated, event.TypeTaskUpdated}, pub.types())
}

func TestUpdateTaskStatusErrors(t *testing.T) {
	ctx := context.Background()
	env, _, svc := newChecklistEnv(t)

	_, err := svc.UpdateTaskStatus(ctx, "E1", "task_1", model.TaskStatusCompleted, nil)
	assert.True(t, errors.Is(err, errors.ErrPlanNotFound), "no plan yet")

	_, err = svc.GetOrGenerate(ctx, "E1")
	require.NoError(t, err)

	_, err = svc.UpdateTaskStatus(ctx, "E1", "task_1", "in_progress", nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidTaskStatus))

	_, err = svc.UpdateTaskStatus(ctx, "E1", "task_99", model.TaskStatusCompleted, nil)
	assert.True(t, errors.Is(err, errors.ErrTaskNotFound))

	// 重新生成后旧计划的任务不再可更新
	env.chat.reply = "### SECTION: Week 1\nRevised.\n### CHECKLIST\n- [ ] Only task\n### END"
	_, err = svc.generator.Generate(ctx, "E1")
	require.NoError(t, err)
	_, err = svc.UpdateTaskStatus(ctx, "E1", "task_2", model.TaskStatusCompleted, nil)
	assert.True(t, errors.Is(err, errors.ErrTaskNotFound))
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newChecklistEnv(t)

	_, err := svc.Progress(ctx, "E1")
	assert.True(t, errors.Is(err, errors.ErrPlanNotFound))

	res, err := svc.GetOrGenerate(ctx, "E1")
	require.NoError(t, err)

	p, err := svc.Progress(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, &model.Progress{EmployeeID: "E1", PlanID: res.Plan.ID, Total: 3, Pending: 3}, p)

	_, err = svc.UpdateTaskStatus(ctx, "E1", "task_2", model.TaskStatusCompleted, nil)
	require.NoError(t, err)

	p, err = svc.Progress(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, 2, p.Pending)
	assert.InDelta(t, 33.3, p.Percent, 1e-9)
}

func TestSummarize(t *testing.T) {
	items := []*model.ChecklistItem{
		{Status: model.TaskStatusCompleted},
		{Status: model.TaskStatusCompleted},
		{Status: model.TaskStatusPending},
	}
	p := summarize("E1", 7, items)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 2, p.Completed)
	assert.InDelta(t, 66.7, p.Percent, 1e-9)

	empty := summarize("E1", 7, nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Percent)
}

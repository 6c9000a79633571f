package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

type plans struct {
	db *gorm.DB
}

func newPlans(db *gorm.DB) *plans {
	return &plans{db}
}

// SavePlan inserts plan as version latest+1 and its checklist in a single
// transaction. A concurrent save that claims the same version loses on the
// unique (employee_id, version) index and gets ErrPlanConflict.
func (p *plans) SavePlan(ctx context.Context, plan *model.OnboardingPlan, items []*model.ChecklistItem) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&model.OnboardingPlan{}).
			Where("employee_id = ?", plan.EmployeeID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}

		plan.Version = latest + 1
		if err := tx.Create(plan).Error; err != nil {
			return err
		}

		if len(items) == 0 {
			return nil
		}
		for _, it := range items {
			it.PlanID = plan.ID
			it.EmployeeID = plan.EmployeeID
		}
		return tx.Create(&items).Error
	})
	if err == nil {
		return nil
	}

	// 事务已回滚，清除回填的主键
	plan.ID, plan.Version = 0, 0
	for _, it := range items {
		it.ID, it.PlanID = 0, 0
	}
	if isDuplicate(err) {
		return errors.ErrPlanConflict.WithCause(err)
	}
	return dbErr(err, nil)
}

// Latest returns the newest plan version and its checklist in task order.
func (p *plans) Latest(ctx context.Context, employeeID string) (*model.OnboardingPlan, []*model.ChecklistItem, error) {
	var plan model.OnboardingPlan
	if err := p.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("version DESC").
		First(&plan).Error; err != nil {
		return nil, nil, dbErr(err, errors.ErrPlanNotFound)
	}

	var items []*model.ChecklistItem
	if err := p.db.WithContext(ctx).Where("plan_id = ?", plan.ID).Order("id").Find(&items).Error; err != nil {
		return nil, nil, dbErr(err, nil)
	}
	return &plan, items, nil
}

// UpdateItem changes the status of one checklist task and returns the row.
func (p *plans) UpdateItem(ctx context.Context, planID uint64, taskID string, upd ItemUpdate) (*model.ChecklistItem, error) {
	fields := map[string]any{
		"status":       upd.Status,
		"completed_at": upd.CompletedAt,
	}
	if upd.Notes != nil {
		fields["notes"] = *upd.Notes
	}

	var item model.ChecklistItem
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ChecklistItem{}).
			Where("plan_id = ? AND task_id = ?", planID, taskID).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrTaskNotFound
		}
		return tx.Where("plan_id = ? AND task_id = ?", planID, taskID).First(&item).Error
	})
	if err != nil {
		return nil, dbErr(err, errors.ErrTaskNotFound)
	}
	return &item, nil
}

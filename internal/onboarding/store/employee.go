package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

type employees struct {
	db *gorm.DB
}

func newEmployees(db *gorm.DB) *employees {
	return &employees{db}
}

// Create creates a new employee together with its initial reminders.
func (e *employees) Create(ctx context.Context, emp *model.Employee, reminders ...*model.Reminder) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(emp).Error; err != nil {
			if isDuplicate(err) {
				return errors.ErrEmployeeExists.WithCause(err)
			}
			return err
		}
		if len(reminders) == 0 {
			return nil
		}
		return tx.Create(reminders).Error
	})
	return dbErr(err, nil)
}

// Update writes every field of an existing employee.
func (e *employees) Update(ctx context.Context, emp *model.Employee) error {
	res := e.db.WithContext(ctx).Model(emp).Select("*").Omit("employee_id", "created_at").Updates(emp)
	if res.Error != nil {
		return dbErr(res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return errors.ErrEmployeeNotFound
	}
	return nil
}

// Delete deletes an employee and everything owned by it.
func (e *employees) Delete(ctx context.Context, employeeID string) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("employee_id = ?", employeeID).Delete(&model.Employee{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.ErrEmployeeNotFound
		}
		for _, m := range []any{&model.ChecklistItem{}, &model.OnboardingPlan{}, &model.Reminder{}} {
			if err := tx.Where("employee_id = ?", employeeID).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return dbErr(err, nil)
}

// Get retrieves an employee by ID.
func (e *employees) Get(ctx context.Context, employeeID string) (*model.Employee, error) {
	var emp model.Employee
	if err := e.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&emp).Error; err != nil {
		return nil, dbErr(err, errors.ErrEmployeeNotFound)
	}
	return &emp, nil
}

// List lists employees ordered by start date.
func (e *employees) List(ctx context.Context, offset, limit int) (int64, []*model.Employee, error) {
	var count int64
	var emps []*model.Employee

	if err := e.db.WithContext(ctx).Model(&model.Employee{}).Count(&count).Error; err != nil {
		return 0, nil, dbErr(err, nil)
	}
	if err := e.db.WithContext(ctx).Order("start_date DESC").Order("employee_id").
		Offset(offset).Limit(limit).Find(&emps).Error; err != nil {
		return 0, nil, dbErr(err, nil)
	}

	return count, emps, nil
}

package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/kart-io/onboarding-assistant/pkg/utils/json"
)

// Checklist task states.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// PlanSection is one titled block of an onboarding plan.
type PlanSection struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// PlanSections is stored as a JSON text column.
type PlanSections []PlanSection

// Value implements driver.Valuer.
func (s PlanSections) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (s *PlanSections) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into PlanSections", src)
	}
	return json.Unmarshal(data, s)
}

// OnboardingPlan is an immutable, versioned plan for one employee.
// Regenerating inserts version+1; the highest version is current.
type OnboardingPlan struct {
	ID          uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID  string       `json:"employee_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_plan_employee_version,priority:1"`
	Version     int          `json:"version" gorm:"not null;uniqueIndex:idx_plan_employee_version,priority:2"`
	Sections    PlanSections `json:"plan_sections" gorm:"type:text;not null"`
	RawResponse string       `json:"raw_response,omitempty" gorm:"type:text"`
	CreatedAt   time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for OnboardingPlan.
func (OnboardingPlan) TableName() string {
	return "onboarding_plans"
}

// ChecklistItem is one action item of a plan. Status, CompletedAt and Notes
// are the only fields that change after creation.
type ChecklistItem struct {
	ID          uint64     `json:"-" gorm:"primaryKey;autoIncrement"`
	PlanID      uint64     `json:"plan_id" gorm:"not null;uniqueIndex:idx_item_plan_task,priority:1"`
	EmployeeID  string     `json:"employee_id" gorm:"type:varchar(64);not null;index"`
	TaskID      string     `json:"task_id" gorm:"type:varchar(32);not null;uniqueIndex:idx_item_plan_task,priority:2"`
	Section     string     `json:"section" gorm:"type:varchar(255)"`
	Description string     `json:"description" gorm:"type:text;not null"`
	Status      string     `json:"status" gorm:"type:varchar(16);not null;default:'pending'"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty" gorm:"type:text"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for ChecklistItem.
func (ChecklistItem) TableName() string {
	return "checklist_items"
}

// Progress summarizes checklist completion for an employee.
type Progress struct {
	EmployeeID string  `json:"employee_id"`
	PlanID     uint64  `json:"plan_id"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Pending    int     `json:"pending"`
	Percent    float64 `json:"percent"`
}

// UpdateTaskRequest is the body of PATCH /v1/employees/:id/checklist/:task_id.
type UpdateTaskRequest struct {
	Status string  `json:"status" validate:"required,taskstatus"`
	Notes  *string `json:"notes" validate:"omitempty,max=2000"`
}

package model

import "time"

// Employee statuses.
const (
	EmployeeStatusActive    = "active"
	EmployeeStatusCompleted = "completed"
)

// Employee is a new hire being onboarded.
type Employee struct {
	EmployeeID string    `json:"employee_id" gorm:"primaryKey;type:varchar(64)"`
	Name       string    `json:"name" gorm:"type:varchar(128);not null"`
	Email      string    `json:"email" gorm:"type:varchar(255)"`
	Phone      string    `json:"phone" gorm:"type:varchar(32)"`
	Role       string    `json:"role" gorm:"type:varchar(128);not null"`
	Department string    `json:"department" gorm:"type:varchar(128)"`
	StartDate  time.Time `json:"start_date"`
	Status     string    `json:"status" gorm:"type:varchar(16);default:'active'"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Employee.
func (Employee) TableName() string {
	return "employees"
}

// CreateEmployeeRequest is the body of POST /v1/employees.
type CreateEmployeeRequest struct {
	EmployeeID string    `json:"employee_id" validate:"required,max=64,trimmed"`
	Name       string    `json:"name" validate:"required,max=128"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Phone      string    `json:"phone" validate:"omitempty,max=32"`
	Role       string    `json:"role" validate:"required,max=128"`
	Department string    `json:"department" validate:"omitempty,max=128"`
	StartDate  time.Time `json:"start_date" validate:"required"`
}

// UpdateEmployeeRequest is the body of PUT /v1/employees/:id. Nil fields are
// left unchanged.
type UpdateEmployeeRequest struct {
	Name       *string    `json:"name" validate:"omitempty,max=128"`
	Email      *string    `json:"email" validate:"omitempty,email"`
	Phone      *string    `json:"phone" validate:"omitempty,max=32"`
	Role       *string    `json:"role" validate:"omitempty,max=128"`
	Department *string    `json:"department" validate:"omitempty,max=128"`
	StartDate  *time.Time `json:"start_date"`
	Status     *string    `json:"status" validate:"omitempty,oneof=active completed"`
}

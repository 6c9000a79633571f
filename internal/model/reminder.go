package model

import "time"

// Reminder states.
const (
	ReminderStatusPending = "pending"
	ReminderStatusSent    = "sent"
)

// ReminderTypeWelcome marks the reminder stored when an employee is created.
const ReminderTypeWelcome = "welcome"

// Reminder is a scheduled notification record. Delivery is handled outside
// this service.
type Reminder struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	EmployeeID   string     `json:"employee_id" gorm:"type:varchar(64);not null;index"`
	ReminderType string     `json:"reminder_type" gorm:"type:varchar(32);not null"`
	Message      string     `json:"message" gorm:"type:text;not null"`
	Channel      string     `json:"channel" gorm:"type:varchar(16);not null"`
	ScheduledAt  time.Time  `json:"scheduled_at" gorm:"index"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Status       string     `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for Reminder.
func (Reminder) TableName() string {
	return "reminders"
}

// CreateReminderRequest is the body of POST /v1/employees/:id/reminders.
type CreateReminderRequest struct {
	ReminderType string    `json:"reminder_type" validate:"required,oneof=daily weekly task custom"`
	Message      string    `json:"message" validate:"required,max=2000"`
	Channel      string    `json:"channel" validate:"required,oneof=email whatsapp"`
	ScheduledAt  time.Time `json:"scheduled_at" validate:"required"`
}

// Package store provides persistence for the onboarding assistant: gorm-backed
// relational stores and the vector stores holding document chunks.
package store

import (
	"context"
	"time"

	"github.com/kart-io/onboarding-assistant/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Documents() DocumentStore
	Employees() EmployeeStore
	Plans() PlanStore
	Reminders() ReminderStore
	Ping(ctx context.Context) error
	Close() error
}

// DocumentUpdate carries the mutable fields of a Document.
type DocumentUpdate struct {
	Status         string
	ChunkCount     int
	ChunksUpserted int
	Error          string
	ProcessedAt    *time.Time
}

// DocumentStore defines the document storage interface.
type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Get(ctx context.Context, id string) (*model.Document, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Document, error)
	UpdateStatus(ctx context.Context, id string, upd DocumentUpdate) error
	Delete(ctx context.Context, id string) error
}

// EmployeeStore defines the employee storage interface.
type EmployeeStore interface {
	// Create stores emp and reminders in one transaction.
	Create(ctx context.Context, emp *model.Employee, reminders ...*model.Reminder) error
	Update(ctx context.Context, emp *model.Employee) error
	// Delete removes the employee with its plans, checklist and reminders.
	Delete(ctx context.Context, employeeID string) error
	Get(ctx context.Context, employeeID string) (*model.Employee, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Employee, error)
}

// PlanStore defines the onboarding plan storage interface.
type PlanStore interface {
	// SavePlan atomically stores plan as the next version for its employee
	// together with its checklist. On error nothing is persisted.
	SavePlan(ctx context.Context, plan *model.OnboardingPlan, items []*model.ChecklistItem) error
	// Latest returns the highest plan version and its checklist.
	Latest(ctx context.Context, employeeID string) (*model.OnboardingPlan, []*model.ChecklistItem, error)
	UpdateItem(ctx context.Context, planID uint64, taskID string, upd ItemUpdate) (*model.ChecklistItem, error)
}

// ItemUpdate carries the mutable fields of a ChecklistItem. Notes is left
// unchanged when nil.
type ItemUpdate struct {
	Status      string
	CompletedAt *time.Time
	Notes       *string
}

// ReminderStore defines the reminder storage interface.
type ReminderStore interface {
	Create(ctx context.Context, r *model.Reminder) error
	ListByEmployee(ctx context.Context, employeeID string) ([]*model.Reminder, error)
	// Pending returns unsent reminders scheduled at or before before.
	Pending(ctx context.Context, before time.Time, limit int) ([]*model.Reminder, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
}

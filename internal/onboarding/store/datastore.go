package store

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/pkg/component/database"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

var _ Factory = (*datastore)(nil)

// NewFactory returns a Factory backed by db.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// AutoMigrate creates or updates every table used by the stores.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Document{},
		&model.Employee{},
		&model.OnboardingPlan{},
		&model.ChecklistItem{},
		&model.Reminder{},
	)
}

// Documents returns the document store.
func (ds *datastore) Documents() DocumentStore {
	return newDocuments(ds.db)
}

// Employees returns the employee store.
func (ds *datastore) Employees() EmployeeStore {
	return newEmployees(ds.db)
}

// Plans returns the plan store.
func (ds *datastore) Plans() PlanStore {
	return newPlans(ds.db)
}

// Reminders returns the reminder store.
func (ds *datastore) Reminders() ReminderStore {
	return newReminders(ds.db)
}

// Ping verifies the database connection.
func (ds *datastore) Ping(ctx context.Context) error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (ds *datastore) Close() error {
	return database.Close(ds.db)
}

// isDuplicate reports a unique constraint violation. TranslateError covers
// the supported drivers; the message checks catch untranslated errors.
func isDuplicate(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

// dbErr maps a gorm error onto the errno taxonomy. notFound is returned for
// missing rows; nil leaves them as database errors.
func dbErr(err error, notFound *errors.Errno) error {
	if err == nil {
		return nil
	}
	if notFound != nil && stderrors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	var e *errors.Errno
	if errors.As(err, &e) {
		return err
	}
	return errors.ErrDatabase.WithCause(err)
}

// Package database opens gorm connections for the configured driver.
//
// SQLite uses the pure-Go glebarez driver so the default build does not need
// cgo. MySQL and PostgreSQL use the official gorm drivers.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	mysqldriver "gorm.io/driver/mysql"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbopts "github.com/kart-io/onboarding-assistant/pkg/options/database"
)

// Open connects to the configured database and verifies it with a ping.
func Open(ctx context.Context, opts *dbopts.Options) (*gorm.DB, error) {
	if opts == nil {
		return nil, fmt.Errorf("database options cannot be nil")
	}

	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(logLevel(opts.LogLevel), opts.SlowThreshold, true),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if opts.Driver == dbopts.DriverSQLite {
		// SQLite 只允许单写者，串行化连接避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxIdleConnections > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConnections)
		}
		if opts.MaxOpenConnections > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConnections)
		}
		if opts.MaxConnectionLifeTime > 0 {
			sqlDB.SetConnMaxLifetime(opts.MaxConnectionLifeTime)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", opts.Driver, err)
	}

	return db, nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(opts *dbopts.Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case dbopts.DriverSQLite:
		return sqlite.Open(BuildSQLiteDSN(opts.SQLitePath)), nil
	case dbopts.DriverMySQL:
		return mysqldriver.Open(BuildMySQLDSN(opts)), nil
	case dbopts.DriverPostgres:
		return postgresdriver.Open(BuildPostgresDSN(opts)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func logLevel(level int) gormlogger.LogLevel {
	switch level {
	case 2:
		return gormlogger.Error
	case 3:
		return gormlogger.Warn
	case 4:
		return gormlogger.Info
	default:
		return gormlogger.Silent
	}
}

// Package database provides relational database options for the gorm-backed
// stores. SQLite is the default so that a single binary runs without any
// external service; MySQL and PostgreSQL are selected with --db.driver.
package database

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/onboarding-assistant/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options defines configuration options for the relational store.
type Options struct {
	Driver string `json:"driver" mapstructure:"driver"`

	// SQLitePath is a file path or ":memory:".
	SQLitePath string `json:"sqlite-path" mapstructure:"sqlite-path"`

	Host     string `json:"host" mapstructure:"host"`
	Port     int    `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"-" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
	SSLMode  string `json:"ssl-mode" mapstructure:"ssl-mode"`

	MaxIdleConnections    int           `json:"max-idle-connections" mapstructure:"max-idle-connections"`
	MaxOpenConnections    int           `json:"max-open-connections" mapstructure:"max-open-connections"`
	MaxConnectionLifeTime time.Duration `json:"max-connection-life-time" mapstructure:"max-connection-life-time"`

	// LogLevel 1=Silent 2=Error 3=Warn 4=Info
	LogLevel      int           `json:"log-level" mapstructure:"log-level"`
	SlowThreshold time.Duration `json:"slow-threshold" mapstructure:"slow-threshold"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Driver:                DriverSQLite,
		SQLitePath:            "onboarding.db",
		Host:                  "127.0.0.1",
		SSLMode:               "disable",
		MaxIdleConnections:    10,
		MaxOpenConnections:    100,
		MaxConnectionLifeTime: 10 * time.Minute,
		LogLevel:              2,
		SlowThreshold:         200 * time.Millisecond,
	}
}

// AddFlags adds flags for database options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "db."
	fs.StringVar(&o.Driver, p+"driver", o.Driver, "Database driver (sqlite|mysql|postgres).")
	fs.StringVar(&o.SQLitePath, p+"sqlite-path", o.SQLitePath, "SQLite database file, or :memory:.")
	fs.StringVar(&o.Host, p+"host", o.Host, "Database host (mysql/postgres).")
	fs.IntVar(&o.Port, p+"port", o.Port, "Database port; 0 selects the driver default.")
	fs.StringVar(&o.Username, p+"username", o.Username, "Database username.")
	fs.StringVar(&o.Password, p+"password", o.Password, "Database password (DEPRECATED: use DB_PASSWORD env var instead).")
	fs.StringVar(&o.Database, p+"database", o.Database, "Database name.")
	fs.StringVar(&o.SSLMode, p+"ssl-mode", o.SSLMode, "PostgreSQL SSL mode.")
	fs.IntVar(&o.MaxIdleConnections, p+"max-idle-connections", o.MaxIdleConnections, "Max idle connections.")
	fs.IntVar(&o.MaxOpenConnections, p+"max-open-connections", o.MaxOpenConnections, "Max open connections.")
	fs.DurationVar(&o.MaxConnectionLifeTime, p+"max-connection-life-time", o.MaxConnectionLifeTime, "Max connection life time.")
	fs.IntVar(&o.LogLevel, p+"log-level", o.LogLevel, "SQL log level (1=silent 2=error 3=warn 4=info).")
	fs.DurationVar(&o.SlowThreshold, p+"slow-threshold", o.SlowThreshold, "Queries slower than this are logged as warnings.")
}

// Complete fills driver-dependent defaults.
func (o *Options) Complete() error {
	// 如果 CLI 参数为空，从环境变量读取
	if o.Password == "" {
		o.Password = os.Getenv("DB_PASSWORD")
	}
	if o.Port == 0 {
		switch o.Driver {
		case DriverMySQL:
			o.Port = 3306
		case DriverPostgres:
			o.Port = 5432
		}
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Driver {
	case DriverSQLite:
		if o.SQLitePath == "" {
			errs = append(errs, fmt.Errorf("db.sqlite-path is required for sqlite"))
		}
	case DriverMySQL, DriverPostgres:
		if o.Host == "" {
			errs = append(errs, fmt.Errorf("db.host is required for %s", o.Driver))
		}
		if o.Database == "" {
			errs = append(errs, fmt.Errorf("db.database is required for %s", o.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported db.driver %q", o.Driver))
	}
	if o.LogLevel < 1 || o.LogLevel > 4 {
		errs = append(errs, fmt.Errorf("db.log-level must be between 1 and 4"))
	}
	return errs
}

// String returns a string representation with password redacted.
func (o *Options) String() string {
	if o.Driver == DriverSQLite {
		return fmt.Sprintf("Database{driver=sqlite, path=%s}", o.SQLitePath)
	}
	password := "[REDACTED]"
	if o.Password == "" {
		password = ""
	}
	return fmt.Sprintf("Database{driver=%s, host=%s, port=%d, user=%s, password=%s, database=%s}",
		o.Driver, o.Host, o.Port, o.Username, password, o.Database)
}

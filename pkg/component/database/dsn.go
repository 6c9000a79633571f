package database

import (
	"fmt"
	"net/url"
	"strings"

	dbopts "github.com/kart-io/onboarding-assistant/pkg/options/database"
)

// BuildSQLiteDSN enables foreign keys and a busy timeout on every connection.
func BuildSQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// BuildMySQLDSN creates a MySQL DSN.
//
// The password is escaped so that characters like @, / or : cannot break
// DSN parsing.
//
//	root:secret@tcp(localhost:3306)/mydb?charset=utf8mb4&parseTime=True&loc=UTC
func BuildMySQLDSN(opts *dbopts.Options) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		opts.Username,
		url.QueryEscape(opts.Password),
		opts.Host,
		opts.Port,
		opts.Database,
	)
}

// BuildPostgresDSN creates a PostgreSQL key=value DSN.
//
//	host=localhost port=5432 user=postgres password=secret dbname=mydb sslmode=disable
func BuildPostgresDSN(opts *dbopts.Options) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		opts.Host,
		opts.Port,
		opts.Username,
		escapePostgresValue(opts.Password),
		opts.Database,
		opts.SSLMode,
	)
}

// escapePostgresValue quotes values containing spaces, quotes or backslashes.
func escapePostgresValue(value string) string {
	if value == "" {
		return "''"
	}
	if !strings.ContainsAny(value, " '\\") {
		return value
	}
	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "'", "\\'")
	return "'" + escaped + "'"
}

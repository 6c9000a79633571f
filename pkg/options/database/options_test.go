package database

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	o := NewOptions()
	require.NoError(t, o.Complete())
	assert.Empty(t, o.Validate())
	assert.Equal(t, DriverSQLite, o.Driver)
}

func TestCompleteDriverPort(t *testing.T) {
	o := NewOptions()
	o.Driver = DriverPostgres
	require.NoError(t, o.Complete())
	assert.Equal(t, 5432, o.Port)

	o = NewOptions()
	o.Driver = DriverMySQL
	require.NoError(t, o.Complete())
	assert.Equal(t, 3306, o.Port)
}

func TestCompletePasswordFromEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")
	o := NewOptions()
	require.NoError(t, o.Complete())
	assert.Equal(t, "s3cret", o.Password)
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	o.Driver = "oracle"
	o.LogLevel = 9
	assert.Len(t, o.Validate(), 2)

	o = NewOptions()
	o.Driver = DriverMySQL
	errs := o.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "db.database")
}

func TestStringRedactsPassword(t *testing.T) {
	o := NewOptions()
	o.Driver = DriverPostgres
	o.Password = "hunter2"
	assert.NotContains(t, o.String(), "hunter2")
	assert.Contains(t, o.String(), "[REDACTED]")
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--db.driver=postgres", "--db.database=onboarding"}))
	assert.Equal(t, DriverPostgres, o.Driver)
	assert.Equal(t, "onboarding", o.Database)
}

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbOptions struct {
	Driver string `mapstructure:"driver"`
}

type testOptions struct {
	Name    string        `mapstructure:"name"`
	Tags    []string      `mapstructure:"tags"`
	Timeout time.Duration `mapstructure:"timeout"`
	DB      *dbOptions    `mapstructure:"db"`

	completed bool
}

func newTestOptions() *testOptions {
	return &testOptions{Name: "default", Timeout: 5 * time.Second, DB: &dbOptions{Driver: "sqlite"}}
}

func (o *testOptions) Flags() NamedFlagSets {
	var fss NamedFlagSets
	fs := fss.FlagSet("generic")
	fs.StringVar(&o.Name, "name", o.Name, "name")
	fs.StringSliceVar(&o.Tags, "tags", o.Tags, "tags")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "timeout")
	fs.StringVar(&o.DB.Driver, "db.driver", o.DB.Driver, "driver")
	return fss
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error { return nil }

func run(t *testing.T, opts *testOptions, args ...string) error {
	t.Helper()
	a := NewApp(WithName("testapp"), WithOptions(opts), WithNoVersion(), WithSilence())
	a.Command().SetArgs(args)
	return a.Command().Execute()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestPrecedence(t *testing.T) {
	cfg := writeFile(t, "testapp.yaml", "name: fromfile\ndb:\n  driver: mysql\n")
	t.Setenv("TESTAPP_DB_DRIVER", "postgres")

	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--config", cfg, "--name", "fromflag", "--env-file", ""))

	assert.Equal(t, "fromflag", opts.Name, "changed flag wins")
	assert.Equal(t, "postgres", opts.DB.Driver, "env beats config file")
	assert.Equal(t, 5*time.Second, opts.Timeout, "untouched keys keep defaults")
	assert.True(t, opts.completed)
}

func TestConfigFileValues(t *testing.T) {
	cfg := writeFile(t, "testapp.yaml", "timeout: 90s\ntags: [a, b]\n")

	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--config", cfg, "--env-file", ""))

	assert.Equal(t, 90*time.Second, opts.Timeout)
	assert.Equal(t, []string{"a", "b"}, opts.Tags)
}

func TestSliceFlagNotDuplicated(t *testing.T) {
	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--tags", "x,y", "--env-file", ""))
	assert.Equal(t, []string{"x", "y"}, opts.Tags)
}

func TestDotEnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "TESTAPP_NAME=fromdotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("TESTAPP_NAME") })

	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--env-file", envFile))
	assert.Equal(t, "fromdotenv", opts.Name)
}

func TestMissingExplicitConfig(t *testing.T) {
	opts := newTestOptions()
	err := run(t, opts, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--env-file", "")
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ONBOARDING_TEST_HOST", "db.internal")
	cfg := writeFile(t, "testapp.yaml", "name: ${ONBOARDING_TEST_HOST}\n")

	opts := newTestOptions()
	require.NoError(t, run(t, opts, "--config", cfg, "--env-file", ""))
	assert.Equal(t, "db.internal", opts.Name)
}

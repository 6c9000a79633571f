package logger

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--log.level=DEBUG", "--log.format=console"}))
	assert.Equal(t, "DEBUG", o.Level)
	assert.Equal(t, "console", o.Format)
}

func TestCreateLoggerWithInitialFields(t *testing.T) {
	o := NewOptions()
	o.OutputPaths = []string{"stdout"}
	o.AddInitialField("service.name", "onboarding")

	log, err := o.CreateLogger()
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestSetLevelRollsBackOnError(t *testing.T) {
	o := NewOptions()
	o.OutputPaths = []string{"stdout"}
	require.NoError(t, o.SetLevel("WARN"))
	assert.Equal(t, "WARN", o.Level)
}

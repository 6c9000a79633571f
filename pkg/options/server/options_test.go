package server

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
	assert.Equal(t, ":8080", o.Addr)
	assert.Equal(t, "release", o.Mode)
}

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--server.addr=:9090", "--server.mode=debug", "--server.shutdown-timeout=5s"}))
	assert.Equal(t, ":9090", o.Addr)
	assert.Equal(t, "debug", o.Mode)
	assert.Equal(t, 5*time.Second, o.ShutdownTimeout)
}

func TestValidate(t *testing.T) {
	o := NewOptions()
	o.ApplyOptions(WithAddr(""), WithShutdownTimeout(0))
	o.Mode = "verbose"
	assert.Len(t, o.Validate(), 3)
}

func TestComplete(t *testing.T) {
	o := NewOptions()
	o.IdleTimeout = 0
	require.NoError(t, o.Complete())
	assert.Equal(t, o.ReadTimeout, o.IdleTimeout)
}

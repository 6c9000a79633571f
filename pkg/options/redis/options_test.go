package redis

import (
	"encoding/json"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsJSONMarshal_PasswordRedacted(t *testing.T) {
	opts := &Options{Host: "localhost", Port: 6379, Password: "supersecret"}

	data, err := json.Marshal(opts)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "supersecret")
	assert.Contains(t, string(data), "[REDACTED]")
}

func TestOptionsJSONMarshal_EmptyPassword(t *testing.T) {
	data, err := json.Marshal(&Options{Host: "localhost", Port: 6379})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"password":""`)
}

func TestOptionsString_PasswordRedacted(t *testing.T) {
	opts := &Options{Host: "localhost", Port: 6379, Password: "supersecret"}
	assert.NotContains(t, opts.String(), "supersecret")
}

func TestCompleteFromEnv(t *testing.T) {
	t.Setenv("REDIS_PASSWORD", "fromenv")
	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.Equal(t, "fromenv", opts.Password)
}

func TestValidate(t *testing.T) {
	assert.Empty(t, NewOptions().Validate())

	opts := NewOptions()
	opts.Host = ""
	opts.Port = 0
	assert.Len(t, opts.Validate(), 2)
}

func TestAddFlagsWithPrefix(t *testing.T) {
	opts := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs, "cache")

	require.NoError(t, fs.Parse([]string{"--cache.redis.host=redis.internal", "--cache.redis.port=6380"}))
	assert.Equal(t, "redis.internal:6380", opts.Addr())
}

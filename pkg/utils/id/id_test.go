package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDMonotonic(t *testing.T) {
	prev := NewULID()
	for i := 0; i < 1000; i++ {
		next := NewULID()
		require.Len(t, next, 26)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewWithPrefix(t *testing.T) {
	v := NewWithPrefix("doc")
	assert.Regexp(t, `^doc_[0-9A-HJKMNP-TV-Z]{26}$`, v)
	assert.Len(t, NewWithPrefix(""), 26)
}

func TestParseULID(t *testing.T) {
	ts, err := ParseULID(NewWithPrefix("emp"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)

	_, err = ParseULID("not-an-id")
	assert.ErrorIs(t, err, ErrInvalidULID)
}

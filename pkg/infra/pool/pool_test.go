package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool(t *testing.T) {
	p, err := NewPool("test", DefaultConfig())
	require.NoError(t, err)
	defer p.Release()

	assert.Equal(t, "test", p.Name())
	assert.Equal(t, 8, p.Cap())

	_, err = NewPool("bad", &Config{Capacity: 0})
	assert.ErrorIs(t, err, ErrInvalidPoolConfig)
}

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 10, ExpiryDuration: 5 * time.Second})
	require.NoError(t, err)
	defer p.Release()

	var counter atomic.Int32
	for i := 0; i < 100; i++ {
		require.NoError(t, p.Submit(func() { counter.Add(1) }))
	}
	p.Wait()

	assert.Equal(t, int32(100), counter.Load())
	stats := p.Stats()
	assert.Equal(t, int64(100), stats.SubmittedTasks)
	assert.Equal(t, int64(100), stats.CompletedTasks)
}

func TestPoolSubmitWithContext(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 2, ExpiryDuration: time.Second})
	require.NoError(t, err)
	defer p.Release()

	var executed atomic.Bool
	require.NoError(t, p.SubmitWithContext(context.Background(), func(context.Context) {
		executed.Store(true)
	}))
	p.Wait()
	assert.True(t, executed.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.SubmitWithContext(ctx, func(context.Context) { t.Error("must not run") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolOverload(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 1, ExpiryDuration: time.Second, Nonblocking: true})
	require.NoError(t, err)
	defer p.Release()

	block := make(chan struct{})
	require.NoError(t, p.Submit(func() { <-block }))

	err = p.Submit(func() {})
	assert.ErrorIs(t, err, ErrPoolOverload)
	assert.Equal(t, int64(1), p.Stats().RejectedTasks)

	close(block)
	p.Wait()
}

func TestPoolPanicRecovered(t *testing.T) {
	var handled sync.WaitGroup
	handled.Add(1)
	p, err := NewPool("test", &Config{
		Capacity:       1,
		ExpiryDuration: time.Second,
		PanicHandler:   func(any) { handled.Done() },
	})
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Submit(func() { panic("boom") }))
	handled.Wait()
	p.Wait()
	assert.Equal(t, int64(1), p.Stats().PanicRecovered)
}

func TestPoolReleaseTimeoutWaitsForTasks(t *testing.T) {
	p, err := NewPool("test", &Config{Capacity: 2, ExpiryDuration: time.Second})
	require.NoError(t, err)

	var done atomic.Bool
	require.NoError(t, p.Submit(func() {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	}))

	_ = p.ReleaseTimeout(2 * time.Second)
	assert.True(t, done.Load())
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

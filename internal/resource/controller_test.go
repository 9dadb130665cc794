package resource

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(60))
	assert.Equal(t, int64(60), c.MemoryUsage())

	assert.ErrorIs(t, c.AcquireMemory(50), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(60), c.MemoryUsage())

	c.ReleaseMemory(60)
	require.NoError(t, c.AcquireMemory(100))
	assert.Equal(t, int64(100), c.MemoryLimit())

	assert.NoError(t, c.AcquireMemory(0))
}

func TestController_Unlimited(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireMemory(1<<40))
	assert.Equal(t, int64(1<<40), c.MemoryUsage())
	assert.Nil(t, c.QuerySlots())

	var buf bytes.Buffer
	assert.Same(t, &buf, c.Writer(context.Background(), &buf))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
	assert.Nil(t, c.QuerySlots())
	assert.NoError(t, c.AcquireIO(context.Background(), 10))
}

func TestController_QuerySlots(t *testing.T) {
	c := NewController(Config{MaxQueryWorkers: 2})
	sem := c.QuerySlots()
	require.NotNil(t, sem)
	assert.True(t, sem.TryAcquire(2))
	assert.False(t, sem.TryAcquire(1))
	sem.Release(2)
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	var buf bytes.Buffer
	w := c.Writer(context.Background(), &buf)
	n, err := w.Write([]byte("Na 0 0 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, "Na 0 0 0\n", buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The bucket starts full, so drain it before expecting a wait to fail.
	_ = c.AcquireIO(context.Background(), 1<<20)
	assert.Error(t, c.AcquireIO(ctx, 1<<20))
}

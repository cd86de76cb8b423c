package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := New(1.0, 3)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))
}

func TestKeysAreIndependent(t *testing.T) {
	krl := New(1.0, 1)
	defer krl.Stop()

	assert.True(t, krl.Allow("client-a"))
	assert.False(t, krl.Allow("client-a"))

	// A different key has its own bucket.
	assert.True(t, krl.Allow("client-b"))
}

func TestWaitBlocksUntilToken(t *testing.T) {
	krl := New(100.0, 1)
	defer krl.Stop()

	ctx := context.Background()
	require.NoError(t, krl.Wait(ctx, "remote"))

	// Second wait needs a refill; at 100 rps that is about 10ms.
	start := time.Now()
	require.NoError(t, krl.Wait(ctx, "remote"))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestWaitRespectsContext(t *testing.T) {
	krl := New(0.001, 1)
	defer krl.Stop()

	ctx := context.Background()
	require.NoError(t, krl.Wait(ctx, "remote"))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()

	err := krl.Wait(ctx, "remote")
	assert.Error(t, err)
}

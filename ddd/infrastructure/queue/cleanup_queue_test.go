package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/ddd/domain/gateway"
)

func TestMemoryCleanupQueue(t *testing.T) {
	q := NewMemoryCleanupQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &gateway.CleanupRequest{RequestID: "1"}))
	require.NoError(t, q.Enqueue(ctx, &gateway.CleanupRequest{RequestID: "2"}))
	assert.ErrorIs(t, q.Enqueue(ctx, &gateway.CleanupRequest{RequestID: "3"}), ErrQueueFull)
	assert.Error(t, q.Enqueue(ctx, nil))
	assert.Equal(t, 2, q.Size())

	req, err := q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", req.RequestID)

	require.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
	assert.ErrorIs(t, q.Enqueue(ctx, &gateway.CleanupRequest{}), ErrQueueClosed)

	// 关闭后仍能取出剩余任务
	req, err = q.Dequeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", req.RequestID)
	_, err = q.Dequeue(ctx)
	assert.ErrorIs(t, err, ErrQueueClosed)

	m := q.GetMetrics()
	assert.Equal(t, uint64(2), m.EnqueueCount)
	assert.Equal(t, uint64(2), m.DequeueCount)
	assert.Equal(t, uint64(1), m.DroppedCount)
}

func TestDequeueHonoursContext(t *testing.T) {
	q := NewMemoryCleanupQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

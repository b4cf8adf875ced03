package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/ddd/infrastructure/queue"
)

type countingStore struct {
	mu      sync.Mutex
	deleted []string
}

func (s *countingStore) Put(ctx context.Context, bucket, key string, data []byte, opts gateway.PutOptions) (*gateway.StoredObject, error) {
	return nil, errors.New("not used")
}

func (s *countingStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *countingStore) ResolveURL(bucket, path string, opts *gateway.TransformOptions) string {
	return path
}

func (s *countingStore) KeyFromLocation(bucket, location string) string {
	return location
}

func (s *countingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deleted)
}

func TestCleanupWorkerDrainsQueue(t *testing.T) {
	store := &countingStore{}
	q := queue.NewMemoryCleanupQueue(10)
	w := NewCleanupWorker("test", q, cleanup.NewExecutor(store), 2)

	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(context.Background()))

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), &gateway.CleanupRequest{
			Bucket:    "product-images",
			Locations: []string{"a.jpg", "b.jpg"},
		}))
	}

	assert.Eventually(t, func() bool { return store.count() == 6 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
	stats := w.GetStats()
	assert.Equal(t, uint64(3), stats.ProcessedRequests)
	assert.Equal(t, uint64(6), stats.DeletedObjects)
	assert.Equal(t, 0, stats.CurrentlyRunning)
	require.NoError(t, w.Stop())
}

func TestCleanupWorkerStopsOnQueueClose(t *testing.T) {
	q := queue.NewMemoryCleanupQueue(1)
	w := NewCleanupWorker("closing", q, cleanup.NewExecutor(&countingStore{}), 1)
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, q.Close())

	done := make(chan struct{})
	go func() {
		_ = w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

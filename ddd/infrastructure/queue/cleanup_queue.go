package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront-service/ddd/domain/gateway"
)

var (
	// ErrQueueClosed 队列已关闭
	ErrQueueClosed = errors.New("queue is closed")
	// ErrQueueFull 队列已满，调用方应降级为同步删除或丢弃
	ErrQueueFull = errors.New("queue is full")
)

// CleanupQueue 旧图片清理任务队列
type CleanupQueue interface {
	// Enqueue 入队任务（非阻塞，满时返回 ErrQueueFull）
	Enqueue(ctx context.Context, req *gateway.CleanupRequest) error

	// Dequeue 出队任务（阻塞）
	Dequeue(ctx context.Context) (*gateway.CleanupRequest, error)

	// Size 获取队列大小
	Size() int

	// Close 关闭队列
	Close() error

	// IsClosed 检查队列是否已关闭
	IsClosed() bool
}

// MemoryCleanupQueue 基于内存的队列实现
type MemoryCleanupQueue struct {
	queue   chan *gateway.CleanupRequest
	closed  bool
	mu      sync.RWMutex
	metrics *QueueMetrics
}

// QueueMetrics 队列指标
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	DroppedCount uint64
	MaxSize      int
	CurrentSize  int
	mu           sync.RWMutex
}

// NewMemoryCleanupQueue 创建内存队列
func NewMemoryCleanupQueue(capacity int) *MemoryCleanupQueue {
	if capacity <= 0 {
		capacity = 100 // 默认容量
	}
	return &MemoryCleanupQueue{
		queue:   make(chan *gateway.CleanupRequest, capacity),
		metrics: &QueueMetrics{MaxSize: capacity},
	}
}

// Enqueue 入队任务
func (q *MemoryCleanupQueue) Enqueue(ctx context.Context, req *gateway.CleanupRequest) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	if req == nil {
		return fmt.Errorf("cleanup request cannot be nil")
	}

	select {
	case q.queue <- req:
		q.updateMetrics(func(m *QueueMetrics) { m.EnqueueCount++ })
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		q.updateMetrics(func(m *QueueMetrics) { m.DroppedCount++ })
		return ErrQueueFull
	}
}

// Dequeue 出队任务（阻塞）；队列关闭且排空后返回 ErrQueueClosed
func (q *MemoryCleanupQueue) Dequeue(ctx context.Context) (*gateway.CleanupRequest, error) {
	select {
	case req, ok := <-q.queue:
		if !ok {
			return nil, ErrQueueClosed
		}
		q.updateMetrics(func(m *QueueMetrics) { m.DequeueCount++ })
		return req, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size 获取队列大小
func (q *MemoryCleanupQueue) Size() int {
	return len(q.queue)
}

// Close 关闭队列，已入队的任务仍可被取出
func (q *MemoryCleanupQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

// IsClosed 检查队列是否已关闭
func (q *MemoryCleanupQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics 获取队列指标
func (q *MemoryCleanupQueue) GetMetrics() QueueMetrics {
	q.metrics.mu.RLock()
	defer q.metrics.mu.RUnlock()

	return QueueMetrics{
		EnqueueCount: q.metrics.EnqueueCount,
		DequeueCount: q.metrics.DequeueCount,
		DroppedCount: q.metrics.DroppedCount,
		MaxSize:      q.metrics.MaxSize,
		CurrentSize:  q.Size(),
	}
}

func (q *MemoryCleanupQueue) updateMetrics(fn func(m *QueueMetrics)) {
	q.metrics.mu.Lock()
	defer q.metrics.mu.Unlock()
	fn(q.metrics)
}

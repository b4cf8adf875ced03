package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/ddd/infrastructure/queue"
	"storefront-service/pkg/logger"
)

// CleanupWorker 清理工作器接口
type CleanupWorker interface {
	// Start 启动工作器
	Start(ctx context.Context) error

	// Stop 停止工作器
	Stop() error

	// IsRunning 检查工作器是否运行中
	IsRunning() bool

	// GetStats 获取工作器统计信息
	GetStats() WorkerStats
}

// WorkerStats 工作器统计信息
type WorkerStats struct {
	ProcessedRequests uint64
	DeletedObjects    uint64
	FailedObjects     uint64
	CurrentlyRunning  int
	StartTime         time.Time
	LastRequestTime   time.Time
}

// cleanupWorkerImpl 清理工作器实现
type cleanupWorkerImpl struct {
	id          string
	queue       queue.CleanupQueue
	executor    *cleanup.Executor
	workerCount int
	running     bool
	cancel      context.CancelFunc
	stats       WorkerStats
	mu          sync.RWMutex
	wg          sync.WaitGroup
}

// NewCleanupWorker 创建清理工作器
func NewCleanupWorker(id string, q queue.CleanupQueue, executor *cleanup.Executor, workerCount int) CleanupWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &cleanupWorkerImpl{
		id:          id,
		queue:       q,
		executor:    executor,
		workerCount: workerCount,
		stats:       WorkerStats{StartTime: time.Now()},
	}
}

// Start 启动工作器
func (w *cleanupWorkerImpl) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("worker %s is already running", w.id)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.stats.StartTime = time.Now()

	logger.Infof("Starting cleanup worker %s with %d goroutines", w.id, w.workerCount)
	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.workerLoop(workerCtx, i)
	}
	return nil
}

// Stop 停止工作器并等待进行中的删除完成
func (w *cleanupWorkerImpl) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.wg.Wait()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	logger.Infof("Cleanup worker %s stopped", w.id)
	return nil
}

// IsRunning 检查工作器是否运行中
func (w *cleanupWorkerImpl) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats 获取工作器统计信息
func (w *cleanupWorkerImpl) GetStats() WorkerStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// workerLoop 工作器主循环
func (w *cleanupWorkerImpl) workerLoop(ctx context.Context, n int) {
	defer w.wg.Done()
	logger.Debugf("Worker %s-%d started", w.id, n)
	defer logger.Debugf("Worker %s-%d stopped", w.id, n)

	for {
		req, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, queue.ErrQueueClosed) {
				return
			}
			logger.Warnf("Worker %s-%d failed to dequeue: %v", w.id, n, err)
			time.Sleep(time.Second) // 避免忙等待
			continue
		}
		if req == nil {
			continue
		}
		w.process(ctx, req)
	}
}

// process 删除不随 worker 停止而中断，避免删除到一半
func (w *cleanupWorkerImpl) process(ctx context.Context, req *gateway.CleanupRequest) {
	w.updateStats(func(s *WorkerStats) { s.CurrentlyRunning++ })
	res := w.executor.Execute(context.WithoutCancel(ctx), *req)
	w.updateStats(func(s *WorkerStats) {
		s.CurrentlyRunning--
		s.ProcessedRequests++
		s.DeletedObjects += uint64(res.Deleted)
		s.FailedObjects += uint64(res.Failed)
		s.LastRequestTime = time.Now()
	})
}

func (w *cleanupWorkerImpl) updateStats(fn func(*WorkerStats)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.stats)
}

package queue

import (
	"sync"

	"storefront-service/pkg/config"
)

var (
	queueOnce    sync.Once
	defaultQueue *MemoryCleanupQueue
)

// DefaultCleanupQueue 进程内共享的清理队列，生产者（调度器/Kafka 消费者）与 worker 共用
func DefaultCleanupQueue() CleanupQueue {
	queueOnce.Do(func() {
		capacity := 100
		if cfg := config.GetGlobalConfig(); cfg != nil && cfg.Cleanup.QueueCapacity > 0 {
			capacity = cfg.Cleanup.QueueCapacity
		}
		defaultQueue = NewMemoryCleanupQueue(capacity)
	})
	return defaultQueue
}

// CloseDefaultCleanupQueue 关闭默认队列
func CloseDefaultCleanupQueue() {
	if defaultQueue != nil {
		_ = defaultQueue.Close()
	}
}

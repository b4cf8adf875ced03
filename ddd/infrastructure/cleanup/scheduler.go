package cleanup

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/infrastructure/queue"
	"storefront-service/pkg/config"
	"storefront-service/pkg/kafka"
	"storefront-service/pkg/logger"
)

// 清理模式
const (
	ModeImmediate = "immediate"
	ModeQueue     = "queue"
	ModeKafka     = "kafka"
)

// ImmediateScheduler 在调用方的请求内同步删除
type ImmediateScheduler struct {
	executor *Executor
}

// NewImmediateScheduler 创建同步调度器
func NewImmediateScheduler(executor *Executor) *ImmediateScheduler {
	return &ImmediateScheduler{executor: executor}
}

func (s *ImmediateScheduler) Schedule(ctx context.Context, req gateway.CleanupRequest) error {
	s.executor.Execute(ctx, req)
	return nil
}

// QueueScheduler 投递到进程内队列，由 worker 池异步删除；队列满时降级为同步删除
type QueueScheduler struct {
	queue    queue.CleanupQueue
	fallback *Executor
}

// NewQueueScheduler 创建队列调度器
func NewQueueScheduler(q queue.CleanupQueue, fallback *Executor) *QueueScheduler {
	return &QueueScheduler{queue: q, fallback: fallback}
}

func (s *QueueScheduler) Schedule(ctx context.Context, req gateway.CleanupRequest) error {
	err := s.queue.Enqueue(ctx, &req)
	if err == nil {
		return nil
	}
	if errors.Is(err, queue.ErrQueueFull) && s.fallback != nil {
		logger.Warnf("cleanup queue full, deleting inline request_id=%s", req.RequestID)
		s.fallback.Execute(ctx, req)
		return nil
	}
	return fmt.Errorf("enqueue cleanup: %w", err)
}

// KafkaScheduler 发布到 Kafka 主题，由消费者组件转入 worker 队列
type KafkaScheduler struct {
	producer kafka.Producer
	topic    string
}

// NewKafkaScheduler 创建 Kafka 调度器
func NewKafkaScheduler(producer kafka.Producer, topic string) *KafkaScheduler {
	return &KafkaScheduler{producer: producer, topic: topic}
}

func (s *KafkaScheduler) Schedule(ctx context.Context, req gateway.CleanupRequest) error {
	data, err := Marshal(req)
	if err != nil {
		return err
	}
	// 同一个桶的清理落在同一分区
	if err := s.producer.Produce(ctx, s.topic, []byte(req.Bucket), data); err != nil {
		return fmt.Errorf("publish cleanup to %s: %w", s.topic, err)
	}
	return nil
}

// NewScheduler 按 cleanup.mode 选择实现
func NewScheduler(cfg *config.Config, store gateway.BlobStore) gateway.CleanupScheduler {
	executor := NewExecutor(store)
	mode := ModeImmediate
	if cfg != nil {
		mode = cfg.Cleanup.Mode
	}
	switch mode {
	case ModeQueue:
		return NewQueueScheduler(queue.DefaultCleanupQueue(), executor)
	case ModeKafka:
		if cfg.Kafka.Enabled {
			return NewKafkaScheduler(kafka.DefaultClient(), cfg.Kafka.Topics.AssetCleanup)
		}
		logger.Warn("cleanup.mode=kafka but kafka is disabled, falling back to immediate")
		return NewImmediateScheduler(executor)
	default:
		return NewImmediateScheduler(executor)
	}
}

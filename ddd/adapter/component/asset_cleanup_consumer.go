package component

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/ddd/infrastructure/queue"
	"storefront-service/pkg/config"
	pkgkafka "storefront-service/pkg/kafka"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
)

// AssetCleanupConsumerPlugin cleanup.mode=kafka 时消费清理主题并投递到本地队列
type AssetCleanupConsumerPlugin struct{}

func (p *AssetCleanupConsumerPlugin) Name() string { return "assetCleanupConsumer" }

func (p *AssetCleanupConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	if cfg == nil || cfg.Cleanup.Mode != cleanup.ModeKafka || !cfg.Kafka.Enabled {
		return nil
	}
	return &assetCleanupConsumer{
		topic:   cfg.Kafka.Topics.AssetCleanup,
		groupID: cfg.Kafka.GroupID,
		queue:   queue.DefaultCleanupQueue(),
		open: func(topic, groupID string) messageSource {
			return pkgkafka.DefaultClient().Reader(topic, groupID)
		},
		retryDelay: 200 * time.Millisecond,
	}
}

// messageSource kafka.Reader 的子集
type messageSource interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type assetCleanupConsumer struct {
	topic      string
	groupID    string
	queue      queue.CleanupQueue
	open       func(topic, groupID string) messageSource
	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (c *assetCleanupConsumer) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())
	reader := c.open(c.topic, c.groupID)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer reader.Close()
		logger.Infof("Kafka consumer started topic=%s group=%s", c.topic, c.groupID)
		c.consume(c.ctx, reader)
	}()
	return nil
}

func (c *assetCleanupConsumer) consume(ctx context.Context, reader messageSource) {
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				logger.Debug("Kafka reader EOF")
			} else {
				logger.Warnf("Kafka read error error=%s", err.Error())
			}
			// broker 持续不可用时避免空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if !c.handle(ctx, msg) {
			// 进程退出，未提交的消息下次重新消费
			return
		}
		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Warnf("Kafka commit failed offset=%d error=%s", msg.Offset, err.Error())
		}
	}
}

// handle 投递成功或消息无效时返回 true（可提交），ctx 结束时返回 false
func (c *assetCleanupConsumer) handle(ctx context.Context, msg kafkago.Message) bool {
	req, err := cleanup.Unmarshal(msg.Value)
	if err != nil {
		logger.Warnf("Cleanup message dropped offset=%d error=%s", msg.Offset, err.Error())
		return true
	}

	for {
		err := c.queue.Enqueue(ctx, req)
		switch {
		case err == nil:
			logger.Debug("Cleanup request queued", map[string]interface{}{
				"request_id": req.RequestID,
				"bucket":     req.Bucket,
				"count":      len(req.Locations),
			})
			return true
		case errors.Is(err, queue.ErrQueueFull):
			// 队列满时等待 worker 消化，反压到 Kafka
			select {
			case <-ctx.Done():
				return false
			case <-time.After(c.retryDelay):
			}
		default:
			if ctx.Err() == nil {
				logger.Warnf("Cleanup request enqueue failed request_id=%s error=%s", req.RequestID, err.Error())
			}
			return false
		}
	}
}

func (c *assetCleanupConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return nil
}

func (c *assetCleanupConsumer) GetName() string { return "assetCleanupConsumer" }

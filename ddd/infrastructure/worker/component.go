package worker

import (
	"context"
	"fmt"

	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/ddd/infrastructure/queue"
	"storefront-service/ddd/infrastructure/storage"
	"storefront-service/internal/resource"
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
	"storefront-service/pkg/task"
)

// CleanupWorkerComponentPlugin cleanup.mode 为 queue/kafka 时启动删除 worker 池
type CleanupWorkerComponentPlugin struct{}

func (p *CleanupWorkerComponentPlugin) Name() string {
	return "cleanupWorkerComponent"
}

func (p *CleanupWorkerComponentPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	if cfg == nil || cfg.Cleanup.Mode == cleanup.ModeImmediate {
		return nil
	}

	minioRes := resource.DefaultMinioResource()
	var store gateway.BlobStore = storage.NewMinioBlobStore(minioRes.GetClient(), storage.MinioBlobStoreOptions{
		PublicBase:    minioRes.PublicBase(),
		TransformBase: cfg.Public.TransformBase,
		MaxObjectSize: cfg.Media.StoreMaxSizeBytes(),
	})

	q := queue.DefaultCleanupQueue()
	return &cleanupWorkerComponent{
		name:   "cleanupWorker",
		worker: NewCleanupWorker("cleanup-worker", q, cleanup.NewExecutor(store), cfg.Cleanup.Workers),
	}
}

type cleanupWorkerComponent struct {
	name   string
	worker CleanupWorker
}

func (c *cleanupWorkerComponent) Start() error {
	if c.worker == nil {
		return fmt.Errorf("cleanup worker not initialized")
	}
	// 注册后台任务，让应用启动时统一管理
	task.Register(&backgroundTaskAdapter{name: c.name, startFunc: c.worker.Start, stopFunc: c.worker.Stop})
	logger.Infof("Cleanup worker component registered background task name=%s", c.name)
	return nil
}

func (c *cleanupWorkerComponent) Stop() error {
	// worker 由 task 管理器停止，这里只关闭队列
	queue.CloseDefaultCleanupQueue()
	logger.Infof("Cleanup worker component stopped name=%s", c.name)
	return nil
}

func (c *cleanupWorkerComponent) GetName() string {
	return c.name
}

// backgroundTaskAdapter adapts Start/Stop functions to the BackgroundTask interface.
type backgroundTaskAdapter struct {
	name      string
	startFunc func(ctx context.Context) error
	stopFunc  func() error
}

func (b *backgroundTaskAdapter) Name() string                    { return b.name }
func (b *backgroundTaskAdapter) Start(ctx context.Context) error { return b.startFunc(ctx) }
func (b *backgroundTaskAdapter) Stop() error                     { return b.stopFunc() }

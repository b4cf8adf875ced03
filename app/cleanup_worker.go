package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/internal/resource"
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
	"storefront-service/pkg/observability"
	"storefront-service/pkg/task"
)

// RunCleanupWorker 独立运行旧图片清理：消费 Kafka 清理主题，由本地 worker 池删除对象
// 只打开 MinIO 与 Kafka，不依赖数据库和 Redis
func RunCleanupWorker() {
	fmt.Println("[STARTUP] Starting asset cleanup worker...")

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[ERROR] Failed to load config (%s): %v\n", cfgPath, err)
		os.Exit(1)
	}
	if cfg.Cleanup.Mode != cleanup.ModeKafka || !cfg.Kafka.Enabled {
		fmt.Printf("[ERROR] cleanup worker requires cleanup.mode=kafka and kafka.enabled, got mode=%s enabled=%v\n",
			cfg.Cleanup.Mode, cfg.Kafka.Enabled)
		os.Exit(1)
	}
	config.SetGlobalConfig(cfg)

	logService := logger.NewLogger(cfg)
	logger.SetGlobalLogger(logService)

	observability.StartProfilingWith("storefront-cleanup-worker", cfg.Observability.PyroscopeEnabled, cfg.Observability.PyroscopeAddress)
	defer observability.StopProfiling()

	minioRes := resource.DefaultMinioResource()
	minioRes.MustOpen()
	defer minioRes.Close()
	kafkaRes := &resource.KafkaResource{}
	kafkaRes.MustOpen()
	defer kafkaRes.Close()

	// 只有消费者和 worker 池两个组件会在该模式下创建
	manager.MustInitComponents(&manager.Dependencies{Config: cfg})
	if err := task.StartAll(context.Background()); err != nil {
		logger.Fatal(fmt.Sprintf("Failed to start background tasks error=%v", err))
	}
	logger.Infof("Cleanup worker running topic=%s group=%s workers=%d",
		cfg.Kafka.Topics.AssetCleanup, cfg.Kafka.GroupID, cfg.Cleanup.Workers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Received shutdown signal, stopping cleanup worker...")
	// 队列关闭后消费者随之退出，未提交的消息由下一个实例重新消费
	task.StopAll()
	manager.Shutdown()
	logService.Close()
	fmt.Println("[SHUTDOWN] Asset cleanup worker exited")
}

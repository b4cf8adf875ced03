package resource

import (
	"storefront-service/pkg/config"
	"storefront-service/pkg/kafka"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
)

// KafkaResource 仅在 kafka.enabled 时打开共享客户端
type KafkaResource struct {
	opened bool
}

type KafkaResourcePlugin struct{}

func (p *KafkaResourcePlugin) Name() string { return "kafka" }

func (p *KafkaResourcePlugin) MustCreateResource() manager.Resource { return &KafkaResource{} }

func (r *KafkaResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil || !cfg.Kafka.Enabled {
		logger.Info("Kafka disabled, skip client init")
		return
	}
	kafka.DefaultClient().MustOpen()
	if err := kafka.DefaultClient().EnsureTopic(cfg.Kafka.Topics.AssetCleanup, 1, 1); err != nil {
		logger.Warnf("ensure kafka topic %s failed: %v", cfg.Kafka.Topics.AssetCleanup, err)
	}
	r.opened = true
}

func (r *KafkaResource) Close() {
	if r.opened {
		kafka.DefaultClient().Close()
	}
}

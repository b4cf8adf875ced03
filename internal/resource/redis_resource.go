package resource

import (
	"fmt"
	"sync"

	"storefront-service/pkg/assert"
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
	"storefront-service/pkg/redisclient"
)

var (
	redisResourceOnce sync.Once
	redisSingleton    *RedisResource
)

// RedisResource 管理员会话与上传进度共用的 Redis 连接
type RedisResource struct {
	client *redisclient.Client
}

func DefaultRedisResource() *RedisResource {
	assert.NotCircular()
	redisResourceOnce.Do(func() {
		redisSingleton = &RedisResource{}
	})
	assert.NotNil(redisSingleton)
	return redisSingleton
}

func (r *RedisResource) MustOpen() {
	if r.client != nil {
		return
	}
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before RedisResource")
	}

	client, err := redisclient.New(cfg.Redis)
	if err != nil {
		panic(fmt.Sprintf("failed to connect redis addr=%s: %v", cfg.Redis.GetRedisAddr(), err))
	}
	r.client = client
	logger.Info("Redis connected", map[string]interface{}{
		"addr": cfg.Redis.GetRedisAddr(),
		"db":   cfg.Redis.DB,
		"tls":  cfg.Redis.EnableTLS,
	})
}

// Wrapped 带 JSON 辅助方法的客户端
func (r *RedisResource) Wrapped() *redisclient.Client {
	return r.client
}

func (r *RedisResource) Close() {
	if r.client == nil {
		return
	}
	if err := r.client.Close(); err != nil {
		logger.Warnf("Redis close failed error=%v", err)
	}
	r.client = nil
}

type RedisResourcePlugin struct{}

func (p *RedisResourcePlugin) Name() string { return "redis" }

func (p *RedisResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultRedisResource()
}

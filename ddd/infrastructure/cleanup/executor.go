package cleanup

import (
	"context"

	"storefront-service/ddd/domain/gateway"
	"storefront-service/pkg/logger"
)

// Result 一次清理的统计
type Result struct {
	Deleted int
	Failed  int
}

// Executor 逐个删除地址对应的对象，失败只记日志
type Executor struct {
	store gateway.BlobStore
}

// NewExecutor 创建删除执行器
func NewExecutor(store gateway.BlobStore) *Executor {
	return &Executor{store: store}
}

// Execute 单个对象删除失败不影响其他对象
func (e *Executor) Execute(ctx context.Context, req gateway.CleanupRequest) Result {
	var res Result
	for _, location := range req.Locations {
		key := e.store.KeyFromLocation(req.Bucket, location)
		if key == "" {
			continue
		}
		if err := e.store.Delete(ctx, req.Bucket, key); err != nil {
			res.Failed++
			logger.Warn("Failed to delete superseded asset", map[string]interface{}{
				"request_id": req.RequestID,
				"bucket":     req.Bucket,
				"key":        key,
				"reason":     req.Reason,
				"error":      err.Error(),
			})
			continue
		}
		res.Deleted++
	}
	logger.Info("Asset cleanup finished", map[string]interface{}{
		"request_id": req.RequestID,
		"bucket":     req.Bucket,
		"reason":     req.Reason,
		"deleted":    res.Deleted,
		"failed":     res.Failed,
	})
	return res
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
	"storefront-service/pkg/logger"
)

// CommitFunc 持久化新的图片地址列表
type CommitFunc func(ctx context.Context, locations []string) error

// ReplaceAssetsRequest 替换父实体的图片
type ReplaceAssetsRequest struct {
	Existing []string
	Upload   UploadBatchRequest
	// Commit 为 nil 时视为提交成功
	Commit CommitFunc
	Reason string
}

// ReplaceAssetsResult 替换结果
type ReplaceAssetsResult struct {
	Locations []string
	Outcome   *entity.BatchOutcome
}

// AssetLifecycleService 先上传、再提交、最后删除旧图
type AssetLifecycleService interface {
	ReplaceAssets(ctx context.Context, req ReplaceAssetsRequest) (*ReplaceAssetsResult, error)
	// ReleaseAssets 父实体删除后尽力清理其图片，错误只记录日志
	ReleaseAssets(ctx context.Context, bucket string, locations []string, reason string)
}

type assetLifecycleServiceImpl struct {
	orchestrator UploadOrchestrator
	cleanup      gateway.CleanupScheduler
}

// NewAssetLifecycleService 创建图片生命周期服务
func NewAssetLifecycleService(orchestrator UploadOrchestrator, cleanup gateway.CleanupScheduler) AssetLifecycleService {
	return &assetLifecycleServiceImpl{orchestrator: orchestrator, cleanup: cleanup}
}

// ReplaceAssets 任一新图上传失败或提交失败时旧图保持不动
func (s *assetLifecycleServiceImpl) ReplaceAssets(ctx context.Context, req ReplaceAssetsRequest) (*ReplaceAssetsResult, error) {
	bucket := req.Upload.Destination.Bucket
	outcome, err := s.orchestrator.UploadBatch(ctx, req.Upload)
	if outcome == nil {
		return nil, err
	}
	result := &ReplaceAssetsResult{Locations: outcome.Locations(), Outcome: outcome}

	if err != nil || outcome.HasFailures() {
		// 部分成功的新图不会被引用，按孤儿清理
		s.schedule(ctx, bucket, result.Locations, "replace_aborted")
		if err == nil {
			err = outcome.PartialFailure(false)
		}
		logger.Warn("asset replace aborted, existing assets kept", map[string]interface{}{
			"bucket":   bucket,
			"existing": len(req.Existing),
			"summary":  outcome.Summary(),
		})
		return result, err
	}

	if req.Commit != nil {
		if err := req.Commit(ctx, result.Locations); err != nil {
			s.schedule(ctx, bucket, result.Locations, "commit_failed")
			return result, fmt.Errorf("commit new assets: %w", err)
		}
	}

	reason := req.Reason
	if reason == "" {
		reason = "replaced"
	}
	s.schedule(ctx, bucket, superseded(req.Existing, result.Locations), reason)
	return result, nil
}

func (s *assetLifecycleServiceImpl) ReleaseAssets(ctx context.Context, bucket string, locations []string, reason string) {
	s.schedule(ctx, bucket, locations, reason)
}

// schedule 清理失败不影响主流程
func (s *assetLifecycleServiceImpl) schedule(ctx context.Context, bucket string, locations []string, reason string) {
	if len(locations) == 0 || s.cleanup == nil {
		return
	}
	err := s.cleanup.Schedule(context.WithoutCancel(ctx), gateway.CleanupRequest{
		RequestID:   uuid.NewString(),
		Bucket:      bucket,
		Locations:   locations,
		Reason:      reason,
		RequestedAt: time.Now(),
	})
	if err != nil {
		cleanupResults.WithLabelValues("error").Inc()
		logger.Error("schedule asset cleanup failed", map[string]interface{}{
			"bucket":    bucket,
			"locations": locations,
			"reason":    reason,
			"error":     err.Error(),
		})
		return
	}
	cleanupResults.WithLabelValues("scheduled").Inc()
}

// superseded 旧列表中不再被引用的地址
func superseded(existing, current []string) []string {
	keep := make(map[string]struct{}, len(current))
	for _, l := range current {
		keep[l] = struct{}{}
	}
	var out []string
	for _, l := range existing {
		if l == "" {
			continue
		}
		if _, ok := keep[l]; ok {
			continue
		}
		out = append(out, l)
	}
	return out
}

// IsReplaceFailure 判断错误是否来自新图上传失败
func IsReplaceFailure(err error) bool {
	var bp *entity.BatchPartialFailure
	return errors.As(err, &bp)
}

package app

import (
	"context"
	"sync"
	"time"

	"storefront-service/ddd/application/cqe"
	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/domain/port"
	"storefront-service/ddd/domain/service"
	"storefront-service/ddd/domain/vo"
	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/ddd/infrastructure/progress"
	"storefront-service/ddd/infrastructure/storage"
	"storefront-service/internal/resource"
	"storefront-service/pkg/assert"
	"storefront-service/pkg/config"
)

// progressInterval 中间进度写 Redis 的最小间隔
const progressInterval = 250 * time.Millisecond

// Pipeline 上传链路的共享依赖
type Pipeline struct {
	Media        config.MediaConfig
	Store        gateway.BlobStore
	Transcoder   service.ImageTranscoder
	Orchestrator service.UploadOrchestrator
	Lifecycle    service.AssetLifecycleService
	Previews     service.PreviewGenerator
	Progress     port.ProgressStore
}

var (
	pipelineOnce    sync.Once
	defaultPipeline *Pipeline
)

// DefaultPipeline 基于已打开的资源构建，必须在 MustInitResources 之后调用
func DefaultPipeline() *Pipeline {
	assert.NotCircular()
	pipelineOnce.Do(func() {
		cfg := config.GetGlobalConfig()
		assert.NotNil(cfg)

		minioRes := resource.DefaultMinioResource()
		store := storage.NewMinioBlobStore(minioRes.GetClient(), storage.MinioBlobStoreOptions{
			PublicBase:    minioRes.PublicBase(),
			TransformBase: cfg.Public.TransformBase,
			MaxObjectSize: cfg.Media.StoreMaxSizeBytes(),
		})
		progressStore := progress.NewRedisStore(resource.DefaultRedisResource().Wrapped(), cfg.Media.ProgressTTL)
		defaultPipeline = NewPipeline(cfg.Media, store, cleanup.NewScheduler(cfg, store), progressStore)
	})
	assert.NotNil(defaultPipeline)
	return defaultPipeline
}

// NewPipeline 组装领域服务，progressStore 可为 nil
func NewPipeline(media config.MediaConfig, store gateway.BlobStore, scheduler gateway.CleanupScheduler, progressStore port.ProgressStore) *Pipeline {
	transcoder := service.NewImageTranscoder()
	orchestrator := service.NewUploadOrchestrator(transcoder, store, service.OrchestratorOptions{
		ConcurrencyLimit: media.ConcurrencyLimit,
		Retry:            vo.NewExponentialRetryPolicy(media.MaxRetries, media.BackoffBase),
		CacheControl:     media.CacheControl,
	})
	return &Pipeline{
		Media:        media,
		Store:        store,
		Transcoder:   transcoder,
		Orchestrator: orchestrator,
		Lifecycle:    service.NewAssetLifecycleService(orchestrator, scheduler),
		Previews:     service.NewPreviewGenerator(),
		Progress:     progressStore,
	}
}

// BatchRequest 合并配置默认值与请求覆盖，参数需已通过 cqe 校验
func (p *Pipeline) BatchRequest(files []cqe.UploadFile, dest service.UploadDestination, opts cqe.UploadOptions) service.UploadBatchRequest {
	m := p.Media

	quality := m.Quality
	if opts.Quality > 0 {
		quality = opts.Quality
	}
	format, _ := vo.ParseImageFormat(m.Format)
	if opts.Format != "" {
		format, _ = vo.ParseImageFormat(opts.Format)
	}
	maxWidth, maxHeight := m.MaxWidth, m.MaxHeight
	if opts.MaxWidth > 0 {
		maxWidth = opts.MaxWidth
	}
	if opts.MaxHeight > 0 {
		maxHeight = opts.MaxHeight
	}
	limit := m.ConcurrencyLimit
	if opts.ConcurrencyLimit > 0 {
		limit = opts.ConcurrencyLimit
	}
	onTranscode, _ := vo.ParseTranscodeErrorPolicy(firstNonEmpty(opts.OnTranscodeError, m.OnTranscodeError))
	onFile, _ := vo.ParseFileErrorPolicy(firstNonEmpty(opts.OnFileError, m.OnFileError))

	raws := make([]entity.RawAsset, 0, len(files))
	for _, f := range files {
		raws = append(raws, entity.NewRawAsset(f.Name, f.MediaType, f.Content))
	}

	return service.UploadBatchRequest{
		Files:            raws,
		Destination:      dest,
		ConcurrencyLimit: limit,
		MaxRetries:       m.MaxRetries,
		MaxSize:          m.MaxSizeBytes(),
		Transcode: service.TranscodeOptions{
			MaxWidth:  maxWidth,
			MaxHeight: maxHeight,
			Quality:   quality,
			Format:    format,
			OnError:   onTranscode,
		},
		OnFileError: onFile,
		Variants:    opts.Variants,
	}
}

// Reporter uploadID 为空或未配置进度存储时返回 nil
func (p *Pipeline) Reporter(ctx context.Context, uploadID string, total int) *progress.StoreReporter {
	if uploadID == "" || p.Progress == nil {
		return nil
	}
	return progress.NewStoreReporter(ctx, p.Progress, uploadID, total, progressInterval)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

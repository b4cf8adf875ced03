package app

import (
	"context"
	"errors"
	"sync"

	"storefront-service/ddd/application/cqe"
	"storefront-service/ddd/application/dto"
	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/domain/port"
	"storefront-service/ddd/domain/service"
	"storefront-service/ddd/domain/vo"
	"storefront-service/ddd/infrastructure/progress"
	"storefront-service/pkg/assert"
	"storefront-service/pkg/errno"
	"storefront-service/pkg/logger"
)

var (
	singleMediaApp MediaApp
	onceMediaApp   sync.Once
)

type MediaApp interface {
	// UploadImages 批量上传，部分失败时仍返回成功文件
	UploadImages(ctx context.Context, req *cqe.UploadImagesReq) (*dto.UploadOutcomeDto, error)
	// GeneratePreviews 本地预览，不触达存储
	GeneratePreviews(ctx context.Context, req *cqe.PreviewReq) ([]dto.PreviewDto, error)
	// GetUploadProgress 查询上传进度
	GetUploadProgress(ctx context.Context, uploadID string) (*port.ProgressSnapshot, error)
	// ResolveImageURL 计算公开地址
	ResolveImageURL(ctx context.Context, req *cqe.ResolveURLReq) (*dto.ImageURLDto, error)
	// ValidateForm 按规则表校验表单
	ValidateForm(ctx context.Context, req *cqe.ValidateFormReq) *dto.FormValidationDto
}

// previewTranscodeOptions 预览只需要中图尺寸
var previewTranscodeOptions = service.TranscodeOptions{
	MaxWidth:  400,
	MaxHeight: 300,
	Quality:   0.7,
	Format:    vo.ImageFormatSource,
	OnError:   vo.TranscodeFail,
}

type mediaAppImpl struct {
	pipeline *Pipeline
}

func DefaultMediaApp() MediaApp {
	assert.NotCircular()
	onceMediaApp.Do(func() {
		singleMediaApp = NewMediaAppWith(DefaultPipeline())
	})
	assert.NotNil(singleMediaApp)
	return singleMediaApp
}

func NewMediaAppWith(pipeline *Pipeline) MediaApp {
	return &mediaAppImpl{pipeline: pipeline}
}

func (m *mediaAppImpl) UploadImages(ctx context.Context, req *cqe.UploadImagesReq) (*dto.UploadOutcomeDto, error) {
	if err := req.Validate(m.pipeline.Media.MaxFiles); err != nil {
		return nil, err
	}
	bucket, err := m.bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	batch := m.pipeline.BatchRequest(req.Files, service.UploadDestination{Bucket: bucket, Folder: req.Folder}, req.Options)
	reporter := m.pipeline.Reporter(ctx, req.Options.UploadID, len(req.Files))
	if reporter != nil {
		batch.Progress = reporter
		defer reporter.Finish()
	}

	outcome, err := m.pipeline.Orchestrator.UploadBatch(ctx, batch)
	result := dto.NewUploadOutcomeDto(req.Options.UploadID, outcome)
	if err != nil {
		return result, mapBatchError(err)
	}
	return result, nil
}

func (m *mediaAppImpl) GeneratePreviews(ctx context.Context, req *cqe.PreviewReq) ([]dto.PreviewDto, error) {
	if err := req.Validate(m.pipeline.Media.MaxFiles); err != nil {
		return nil, err
	}

	// 原图与压缩图同时生成，哪个先成功用哪个
	previews := make([][]*service.Preview, len(req.Files))
	for i, f := range req.Files {
		raw := entity.NewRawAsset(f.Name, f.MediaType, f.Content)
		original := m.pipeline.Previews.Generate(f.Name, f.MediaType, f.Content)
		compressed := m.pipeline.Previews.GenerateFrom(f.Name, func() (*entity.ProcessedAsset, error) {
			return m.pipeline.Transcoder.Transcode(ctx, raw, previewTranscodeOptions)
		})
		previews[i] = []*service.Preview{original, compressed}
	}

	out := make([]dto.PreviewDto, len(req.Files))
	ok := 0
	for i, candidates := range previews {
		out[i].Name = req.Files[i].Name
		url, err := m.pipeline.Previews.FirstAvailable(ctx, candidates...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			out[i].Error = err.Error()
			continue
		}
		out[i].DataURL = url
		ok++
	}
	if ok == 0 {
		return out, errno.ErrPreviewFailed
	}
	return out, nil
}

func (m *mediaAppImpl) GetUploadProgress(ctx context.Context, uploadID string) (*port.ProgressSnapshot, error) {
	if uploadID == "" {
		return nil, errno.ErrUploadIDRequired
	}
	if m.pipeline.Progress == nil {
		return nil, errno.ErrProgressNotFound
	}
	snapshot, err := m.pipeline.Progress.Get(ctx, uploadID)
	if err != nil {
		if errors.Is(err, progress.ErrProgressNotFound) {
			return nil, errno.ErrProgressNotFound
		}
		return nil, errno.NewBizError(errno.ErrInternalServer, err)
	}
	return snapshot, nil
}

func (m *mediaAppImpl) ResolveImageURL(ctx context.Context, req *cqe.ResolveURLReq) (*dto.ImageURLDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	bucket, err := m.bucket(req.Bucket)
	if err != nil {
		return nil, err
	}

	var opts *gateway.TransformOptions
	if req.Transform || req.Width > 0 || req.Height > 0 || req.Resize != "" || req.Format != "" || req.Quality > 0 {
		t := gateway.TransformOptions{
			Width:   req.Width,
			Height:  req.Height,
			Resize:  req.Resize,
			Format:  req.Format,
			Quality: req.Quality,
		}.WithDefaults()
		opts = &t
	}
	return &dto.ImageURLDto{URL: m.pipeline.Store.ResolveURL(bucket, req.Path, opts)}, nil
}

func (m *mediaAppImpl) ValidateForm(ctx context.Context, req *cqe.ValidateFormReq) *dto.FormValidationDto {
	errs := vo.ValidateFields(req.Fields)
	if errs == nil {
		errs = []*vo.FieldError{}
	}
	return &dto.FormValidationDto{Valid: len(errs) == 0, Errors: errs}
}

// bucket 只允许写入已配置的桶，空值落到商品桶
func (m *mediaAppImpl) bucket(name string) (string, error) {
	switch name {
	case "":
		return m.pipeline.Media.ProductBucket, nil
	case m.pipeline.Media.ProductBucket, m.pipeline.Media.CategoryBucket:
		return name, nil
	default:
		return "", errno.ErrBucketNotExist
	}
}

// mapBatchError 全部失败与中止映射为不同业务码
func mapBatchError(err error) error {
	var bp *entity.BatchPartialFailure
	if errors.As(err, &bp) {
		if bp.All {
			return errno.NewBizError(errno.ErrAllUploadsFailed, err)
		}
		return errno.NewBizError(errno.ErrUploadError, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Errorf("upload batch failed error=%v", err)
	return errno.NewBizError(errno.ErrUploadError, err)
}

package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	"storefront-service/ddd/domain/entity"
	"storefront-service/pkg/logger"
)

// ErrNoPreview 所有候选预览都失败
var ErrNoPreview = errors.New("no preview available")

// Preview 异步生成的预览，完成后只读
type Preview struct {
	done    chan struct{}
	dataURL string
	err     error
}

// Done 预览完成（成功或失败）时关闭
func (p *Preview) Done() <-chan struct{} {
	return p.done
}

// Wait 等待预览完成；ctx 结束时返回 ctx.Err()，后台生成不受影响
func (p *Preview) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.dataURL, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// PreviewGenerator 生成可直接展示的 data URL，不依赖上传状态
type PreviewGenerator interface {
	Generate(name, mediaType string, content []byte) *Preview
	// GenerateFrom 先在后台取得内容（例如压缩后的图片）再生成预览
	GenerateFrom(name string, source func() (*entity.ProcessedAsset, error)) *Preview
	// FirstAvailable 返回最先成功的预览，适合原图与压缩图同时生成的场景
	FirstAvailable(ctx context.Context, previews ...*Preview) (string, error)
}

type previewGeneratorImpl struct{}

// NewPreviewGenerator 创建预览生成器
func NewPreviewGenerator() PreviewGenerator {
	return &previewGeneratorImpl{}
}

// Generate 立即返回，解码校验与编码在后台完成
func (g *previewGeneratorImpl) Generate(name, mediaType string, content []byte) *Preview {
	return g.GenerateFrom(name, func() (*entity.ProcessedAsset, error) {
		return &entity.ProcessedAsset{Name: name, MediaType: mediaType, Content: content}, nil
	})
}

func (g *previewGeneratorImpl) GenerateFrom(name string, source func() (*entity.ProcessedAsset, error)) *Preview {
	p := &Preview{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				p.dataURL = ""
				p.err = &entity.DecodeError{Name: name, Cause: fmt.Errorf("panic: %v", r)}
			}
		}()
		asset, err := source()
		if err == nil {
			p.dataURL, err = buildDataURL(name, asset.MediaType, asset.Content)
		}
		p.err = err
		if err != nil {
			logger.Debug("preview generation failed", map[string]interface{}{
				"name":  name,
				"error": err.Error(),
			})
		}
	}()
	return p
}

// FirstAvailable 任一成功即返回；全部失败返回 ErrNoPreview 包装的最后一个错误
func (g *previewGeneratorImpl) FirstAvailable(ctx context.Context, previews ...*Preview) (string, error) {
	type result struct {
		url string
		err error
	}
	if len(previews) == 0 {
		return "", ErrNoPreview
	}

	ch := make(chan result, len(previews))
	for _, p := range previews {
		go func(p *Preview) {
			url, err := p.Wait(ctx)
			ch <- result{url: url, err: err}
		}(p)
	}

	var lastErr error
	for range previews {
		r := <-ch
		if r.err == nil {
			return r.url, nil
		}
		lastErr = r.err
	}
	return "", fmt.Errorf("%w: %v", ErrNoPreview, lastErr)
}

func buildDataURL(name, mediaType string, content []byte) (string, error) {
	if len(content) == 0 {
		return "", &entity.DecodeError{Name: name, Cause: errors.New("empty content")}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", &entity.DecodeError{Name: name, Cause: err}
	}
	if mediaType == "" {
		mediaType = "image/" + format
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}

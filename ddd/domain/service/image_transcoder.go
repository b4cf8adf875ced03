package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"
	"time"

	"github.com/gen2brain/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/vo"
	"storefront-service/pkg/logger"
)

var errUnsupportedFormat = errors.New("unsupported target format")

// TranscodeOptions 转码参数
type TranscodeOptions struct {
	MaxWidth  int
	MaxHeight int
	// Quality 取值 (0,1]
	Quality float64
	// Format 为空表示保持源格式
	Format  vo.ImageFormat
	OnError vo.TranscodeErrorPolicy
}

// ImageVariant 预设尺寸的派生图
type ImageVariant struct {
	Name  string
	Asset *entity.ProcessedAsset
}

// variantPreset 缩略图/中图/大图
type variantPreset struct {
	name    string
	width   int
	height  int
	quality float64
}

var variantPresets = []variantPreset{
	{name: "thumbnail", width: 150, height: 150, quality: 0.7},
	{name: "medium", width: 400, height: 300, quality: 0.8},
	{name: "large", width: 800, height: 600, quality: 0.85},
}

// ImageTranscoder 图片转码领域服务
type ImageTranscoder interface {
	// Transcode 解码、按边界缩放并重新编码
	Transcode(ctx context.Context, raw entity.RawAsset, opts TranscodeOptions) (*entity.ProcessedAsset, error)
	// GenerateVariants 生成 original + thumbnail/medium/large
	GenerateVariants(ctx context.Context, raw entity.RawAsset, format vo.ImageFormat) ([]ImageVariant, error)
}

type imageTranscoderImpl struct{}

// NewImageTranscoder 创建图片转码服务
func NewImageTranscoder() ImageTranscoder {
	return &imageTranscoderImpl{}
}

// Transcode 解码失败按 OnError 策略处理；编码失败总是返回 EncodeError
func (t *imageTranscoderImpl) Transcode(ctx context.Context, raw entity.RawAsset, opts TranscodeOptions) (*entity.ProcessedAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	src, srcFormat, err := image.Decode(bytes.NewReader(raw.Content))
	if err != nil {
		decodeErr := &entity.DecodeError{Name: raw.Name, Cause: err}
		if opts.OnError == vo.TranscodePassthrough {
			transcodeResults.WithLabelValues("passthrough").Inc()
			logger.Warn("image decode failed, passing original bytes through", map[string]interface{}{
				"name":  raw.Name,
				"size":  raw.Size,
				"error": err.Error(),
			})
			return passthrough(raw), nil
		}
		transcodeResults.WithLabelValues("decode_error").Inc()
		return nil, decodeErr
	}

	sourceFormat := vo.FormatFromMediaType("image/" + srcFormat)
	target := opts.Format
	if target == vo.ImageFormatSource {
		target = sourceFormat
	}

	bounds := src.Bounds()
	dims, err := vo.CalculateDimensions(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)
	if err != nil {
		// 图片本身解码正常，是目标尺寸参数不可用
		transcodeResults.WithLabelValues("encode_error").Inc()
		return nil, &entity.EncodeError{Name: raw.Name, Format: string(target), Cause: err}
	}

	resized := dims.Width != bounds.Dx() || dims.Height != bounds.Dy()
	content, err := encodeImage(scaleImage(src, dims, target), target, opts.Quality)
	if err != nil {
		transcodeResults.WithLabelValues("encode_error").Inc()
		return nil, &entity.EncodeError{Name: raw.Name, Format: string(target), Cause: err}
	}

	// 尺寸与格式都未变化时，重新编码不应比原图更大
	if !resized && target == sourceFormat && len(content) >= len(raw.Content) {
		content = raw.Content
	}

	transcodeDuration.WithLabelValues(string(target)).Observe(time.Since(start).Seconds())
	transcodeResults.WithLabelValues("ok").Inc()
	logger.Debug("image transcoded", map[string]interface{}{
		"name":       raw.Name,
		"source":     fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"target":     dims.String(),
		"format":     string(target),
		"input_size": len(raw.Content),
		"output":     len(content),
	})

	return &entity.ProcessedAsset{
		Name:       target.ReplaceExtension(raw.Name),
		MediaType:  target.MediaType(),
		Content:    content,
		Dimensions: dims,
		Transcoded: true,
	}, nil
}

// GenerateVariants 原图按当前格式透传，派生图按预设尺寸与质量转码
func (t *imageTranscoderImpl) GenerateVariants(ctx context.Context, raw entity.RawAsset, format vo.ImageFormat) ([]ImageVariant, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, &entity.DecodeError{Name: raw.Name, Cause: err}
	}

	variants := make([]ImageVariant, 0, len(variantPresets)+1)
	original := passthrough(raw)
	original.Dimensions = vo.Dimensions{Width: cfg.Width, Height: cfg.Height}
	variants = append(variants, ImageVariant{Name: "original", Asset: original})

	for _, preset := range variantPresets {
		asset, err := t.Transcode(ctx, raw, TranscodeOptions{
			MaxWidth:  preset.width,
			MaxHeight: preset.height,
			Quality:   preset.quality,
			Format:    format,
			OnError:   vo.TranscodeFail,
		})
		if err != nil {
			return nil, err
		}
		asset.Name = variantName(asset.Name, preset.name)
		variants = append(variants, ImageVariant{Name: preset.name, Asset: asset})
	}
	return variants, nil
}

func passthrough(raw entity.RawAsset) *entity.ProcessedAsset {
	return &entity.ProcessedAsset{
		Name:      raw.Name,
		MediaType: raw.MediaType,
		Content:   raw.Content,
	}
}

// variantName photo.jpg + thumbnail -> photo_thumbnail.jpg
func variantName(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

// scaleImage 目标尺寸与原图一致时直接返回原图
func scaleImage(src image.Image, dims vo.Dimensions, target vo.ImageFormat) image.Image {
	b := src.Bounds()
	if dims.Width == b.Dx() && dims.Height == b.Dy() && target != vo.ImageFormatJPEG {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, dims.Width, dims.Height))
	if target == vo.ImageFormatJPEG {
		// JPEG 没有透明通道，先铺白底
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func encodeImage(img image.Image, format vo.ImageFormat, quality float64) ([]byte, error) {
	if quality <= 0 || quality > 1 {
		return nil, fmt.Errorf("quality %.2f out of range (0,1]", quality)
	}
	q := int(quality*100 + 0.5)
	if q < 1 {
		q = 1
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case vo.ImageFormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: q})
	case vo.ImageFormatPNG:
		level := png.DefaultCompression
		if quality < 1 {
			level = png.BestCompression
		}
		err = (&png.Encoder{CompressionLevel: level}).Encode(&buf, img)
	case vo.ImageFormatGIF:
		err = gif.Encode(&buf, img, &gif.Options{NumColors: 256})
	case vo.ImageFormatWebP:
		err = webp.Encode(&buf, img, webp.Options{Quality: q, Method: 4})
	default:
		return nil, fmt.Errorf("%w %q", errUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

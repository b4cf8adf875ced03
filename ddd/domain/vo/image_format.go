package vo

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ImageFormat 编码目标格式
type ImageFormat string

const (
	// ImageFormatSource 保持源文件格式
	ImageFormatSource ImageFormat = ""
	ImageFormatJPEG   ImageFormat = "jpg"
	ImageFormatPNG    ImageFormat = "png"
	ImageFormatWebP   ImageFormat = "webp"
	ImageFormatGIF    ImageFormat = "gif"
)

// ParseImageFormat 解析配置中的目标格式，jpeg 与 jpg 等价
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "source", "original":
		return ImageFormatSource, nil
	case "jpg", "jpeg":
		return ImageFormatJPEG, nil
	case "png":
		return ImageFormatPNG, nil
	case "webp":
		return ImageFormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// FormatFromMediaType image/jpeg -> jpg
func FormatFromMediaType(mediaType string) ImageFormat {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return ImageFormatJPEG
	case "image/png":
		return ImageFormatPNG
	case "image/webp":
		return ImageFormatWebP
	case "image/gif":
		return ImageFormatGIF
	default:
		return ImageFormatSource
	}
}

// MediaType jpg -> image/jpeg
func (f ImageFormat) MediaType() string {
	switch f {
	case ImageFormatJPEG:
		return "image/jpeg"
	case ImageFormatPNG:
		return "image/png"
	case ImageFormatWebP:
		return "image/webp"
	case ImageFormatGIF:
		return "image/gif"
	default:
		return ""
	}
}

// Extension 含点号的扩展名
func (f ImageFormat) Extension() string {
	if f == ImageFormatSource {
		return ""
	}
	return "." + string(f)
}

// ReplaceExtension 目标格式与源格式不同时替换文件扩展名
func (f ImageFormat) ReplaceExtension(name string) string {
	if f == ImageFormatSource {
		return name
	}
	ext := filepath.Ext(name)
	if FormatFromExtension(ext) == f {
		return name
	}
	return strings.TrimSuffix(name, ext) + f.Extension()
}

// FormatFromExtension .jpeg -> jpg
func FormatFromExtension(ext string) ImageFormat {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return ImageFormatJPEG
	case "png":
		return ImageFormatPNG
	case "webp":
		return ImageFormatWebP
	case "gif":
		return ImageFormatGIF
	default:
		return ImageFormatSource
	}
}

// TranscodeErrorPolicy 转码失败时的处理策略
type TranscodeErrorPolicy string

const (
	// TranscodePassthrough 解码失败时原样上传原始字节
	TranscodePassthrough TranscodeErrorPolicy = "passthrough"
	// TranscodeFail 解码/编码失败即判定该文件失败
	TranscodeFail TranscodeErrorPolicy = "fail"
)

// ParseTranscodeErrorPolicy 解析策略，空值取 passthrough
func ParseTranscodeErrorPolicy(s string) (TranscodeErrorPolicy, error) {
	switch TranscodeErrorPolicy(strings.TrimSpace(s)) {
	case "", TranscodePassthrough:
		return TranscodePassthrough, nil
	case TranscodeFail:
		return TranscodeFail, nil
	default:
		return "", fmt.Errorf("unknown on_transcode_error policy %q", s)
	}
}

// FileErrorPolicy 单个文件最终失败后批处理的处理策略
type FileErrorPolicy string

const (
	// FileErrorSkip 记录失败并继续其余文件
	FileErrorSkip FileErrorPolicy = "skip"
	// FileErrorAbortBatch 当前批次结束后停止后续批次
	FileErrorAbortBatch FileErrorPolicy = "abortBatch"
)

// ParseFileErrorPolicy 解析策略，空值取 skip
func ParseFileErrorPolicy(s string) (FileErrorPolicy, error) {
	switch FileErrorPolicy(strings.TrimSpace(s)) {
	case "", FileErrorSkip:
		return FileErrorSkip, nil
	case FileErrorAbortBatch:
		return FileErrorAbortBatch, nil
	default:
		return "", fmt.Errorf("unknown on_file_error policy %q", s)
	}
}

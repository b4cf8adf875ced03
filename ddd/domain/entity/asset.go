package entity

import (
	"fmt"
	"strings"

	"storefront-service/ddd/domain/vo"
)

// RawAsset 调用方提交的原始文件，只在转码前使用一次
type RawAsset struct {
	Name      string
	MediaType string
	Size      int64
	Content   []byte
}

// NewRawAsset 以内容长度作为声明大小
func NewRawAsset(name, mediaType string, content []byte) RawAsset {
	return RawAsset{Name: name, MediaType: mediaType, Size: int64(len(content)), Content: content}
}

// Validate 检查声明的类型与大小，maxSize<=0 表示不限制
func (a RawAsset) Validate(maxSize int64) error {
	if !strings.HasPrefix(strings.ToLower(a.MediaType), "image/") {
		return &ValidationError{Name: a.Name, Reason: fmt.Sprintf("media type %q is not an image", a.MediaType)}
	}
	if a.Size <= 0 {
		return &ValidationError{Name: a.Name, Reason: "file is empty"}
	}
	if maxSize > 0 && a.Size > maxSize {
		return &ValidationError{Name: a.Name, Reason: fmt.Sprintf("size %d exceeds limit %d bytes", a.Size, maxSize)}
	}
	return nil
}

// ProcessedAsset 转码输出，交给存储前由编排器独占
type ProcessedAsset struct {
	Name       string
	MediaType  string
	Content    []byte
	Dimensions vo.Dimensions
	// Transcoded 为 false 表示按 passthrough 策略原样透传
	Transcoded bool
}

// Size 输出字节数
func (p ProcessedAsset) Size() int64 {
	return int64(len(p.Content))
}

// UploadResult 单个文件的上传结果
type UploadResult struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Bucket    string `json:"bucket"`
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
	Size      int64  `json:"size"`

	// Variants 派生图名 -> 公开地址，仅在请求 variants 时返回
	Variants map[string]string `json:"variants,omitempty"`
}

// UploadProgress 单文件进度，Percentage 单调不减
type UploadProgress struct {
	Index      int     `json:"index"`
	Loaded     int64   `json:"loaded"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

// NewUploadProgress 计算百分比并限制在 [0,100]
func NewUploadProgress(index int, loaded, total int64) UploadProgress {
	p := UploadProgress{Index: index, Loaded: loaded, Total: total}
	if total > 0 {
		p.Percentage = float64(loaded) / float64(total) * 100
	}
	if p.Percentage > 100 {
		p.Percentage = 100
	}
	if p.Percentage < 0 {
		p.Percentage = 0
	}
	return p
}

// FileFailure 重试耗尽或校验失败的文件
type FileFailure struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Err   error  `json:"-"`
}

// Message 供接口返回
func (f FileFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// BatchOutcome 批处理汇总，len(Successes)+len(Failures)==Total
type BatchOutcome struct {
	Total     int            `json:"total"`
	Successes []UploadResult `json:"successes"`
	Failures  []FileFailure  `json:"failures"`
}

// Locations 成功文件的公开地址，保持输入顺序
func (o *BatchOutcome) Locations() []string {
	out := make([]string, 0, len(o.Successes))
	for _, s := range o.Successes {
		out = append(out, s.PublicURL)
	}
	return out
}

// HasFailures 是否存在失败文件
func (o *BatchOutcome) HasFailures() bool {
	return len(o.Failures) > 0
}

// AllFailed 全部失败（空批次不算失败）
func (o *BatchOutcome) AllFailed() bool {
	return o.Total > 0 && len(o.Successes) == 0
}

// Summary "N of M images processed successfully"
func (o *BatchOutcome) Summary() string {
	return fmt.Sprintf("%d of %d images processed successfully", len(o.Successes), o.Total)
}

// PartialFailure 存在失败时返回对应错误，否则返回 nil
func (o *BatchOutcome) PartialFailure(aborted bool) *BatchPartialFailure {
	if !o.HasFailures() && !aborted {
		return nil
	}
	return &BatchPartialFailure{
		Failed:  len(o.Failures),
		Total:   o.Total,
		All:     o.AllFailed(),
		Aborted: aborted,
	}
}

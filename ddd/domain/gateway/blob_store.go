package gateway

import (
	"context"
)

// PutOptions 上传参数
type PutOptions struct {
	ContentType  string
	CacheControl string
	// Progress 按已发送字节回调，可为 nil
	Progress func(loaded, total int64)
}

// StoredObject 上传成功后的位置
type StoredObject struct {
	Bucket    string
	Path      string
	PublicURL string
	Size      int64
}

// TransformOptions 图片处理参数，零值字段使用默认值
type TransformOptions struct {
	Width   int
	Height  int
	Resize  string
	Format  string
	Quality int
}

// DefaultTransformOptions 400x300 cover webp 80
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{Width: 400, Height: 300, Resize: "cover", Format: "webp", Quality: 80}
}

// WithDefaults 补全零值字段
func (o TransformOptions) WithDefaults() TransformOptions {
	d := DefaultTransformOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.Resize == "" {
		o.Resize = d.Resize
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = d.Quality
	}
	return o
}

// BlobStore 对象存储网关。Put 不做内部重试，重试由上传编排负责。
type BlobStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, opts PutOptions) (*StoredObject, error)
	// Delete 幂等，对象不存在不算错误
	Delete(ctx context.Context, bucket, key string) error
	// ResolveURL 纯函数，opts 为 nil 或存储不支持变换时返回原始地址
	ResolveURL(bucket, path string, opts *TransformOptions) string
	// KeyFromLocation 把公开地址还原为桶内 key
	KeyFromLocation(bucket, location string) string
}

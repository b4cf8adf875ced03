package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
	"storefront-service/pkg/logger"
)

// ObjectClient minio.Client 中用到的方法
type ObjectClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioBlobStoreOptions 公开地址与大小上限
type MinioBlobStoreOptions struct {
	// PublicBase 对象公开访问前缀，如 http://localhost:9000
	PublicBase string
	// TransformBase 图片处理服务前缀，为空表示不支持变换
	TransformBase string
	// MaxObjectSize 存储端硬上限，<=0 不限制
	MaxObjectSize int64
}

// MinioBlobStore 基于 MinIO/S3 的对象存储
type MinioBlobStore struct {
	client ObjectClient
	opts   MinioBlobStoreOptions
}

// NewMinioBlobStore 创建对象存储
func NewMinioBlobStore(client ObjectClient, opts MinioBlobStoreOptions) *MinioBlobStore {
	opts.PublicBase = strings.TrimRight(opts.PublicBase, "/")
	opts.TransformBase = strings.TrimRight(opts.TransformBase, "/")
	return &MinioBlobStore{client: client, opts: opts}
}

var _ gateway.BlobStore = (*MinioBlobStore)(nil)

// Put 单次上传，不做重试；超过硬上限或权限类错误标记为永久失败
func (s *MinioBlobStore) Put(ctx context.Context, bucket, key string, data []byte, opts gateway.PutOptions) (*gateway.StoredObject, error) {
	size := int64(len(data))
	if s.opts.MaxObjectSize > 0 && size > s.opts.MaxObjectSize {
		return nil, &entity.StoreError{
			Op:        "put",
			Bucket:    bucket,
			Key:       key,
			Permanent: true,
			Cause:     fmt.Errorf("object size %d exceeds store limit %d", size, s.opts.MaxObjectSize),
		}
	}

	putOpts := minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: opts.CacheControl,
	}
	if putOpts.ContentType == "" {
		putOpts.ContentType = http.DetectContentType(data)
	}
	if opts.Progress != nil {
		putOpts.Progress = &progressReader{total: size, fn: opts.Progress}
	}

	info, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(data), size, putOpts)
	if err != nil {
		logger.Error("Failed to put object to MinIO", map[string]interface{}{
			"bucket": bucket,
			"key":    key,
			"size":   size,
			"error":  err.Error(),
		})
		return nil, &entity.StoreError{Op: "put", Bucket: bucket, Key: key, Permanent: isPermanent(err), Cause: err}
	}

	if info.Size > 0 {
		size = info.Size
	}
	logger.Debug("Object uploaded", map[string]interface{}{
		"bucket": bucket,
		"key":    key,
		"size":   size,
	})
	return &gateway.StoredObject{
		Bucket:    bucket,
		Path:      key,
		PublicURL: s.publicURL(bucket, key),
		Size:      size,
	}, nil
}

// Delete 对象不存在视为成功
func (s *MinioBlobStore) Delete(ctx context.Context, bucket, key string) error {
	if key == "" {
		return nil
	}
	err := s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return nil
	}
	return &entity.StoreError{Op: "delete", Bucket: bucket, Key: key, Permanent: isPermanent(err), Cause: err}
}

// ResolveURL 不访问网络；同样的参数总是得到同样的地址
func (s *MinioBlobStore) ResolveURL(bucket, path string, opts *gateway.TransformOptions) string {
	isLocation := strings.Contains(path, "://")
	if opts == nil || s.opts.TransformBase == "" {
		if isLocation {
			return path
		}
		return s.publicURL(bucket, path)
	}

	key := path
	if isLocation {
		key = s.KeyFromLocation(bucket, path)
	}

	o := opts.WithDefaults()
	q := url.Values{}
	q.Set("width", strconv.Itoa(o.Width))
	q.Set("height", strconv.Itoa(o.Height))
	q.Set("resize", o.Resize)
	q.Set("format", o.Format)
	q.Set("quality", strconv.Itoa(o.Quality))
	// Encode 按 key 排序
	return s.opts.TransformBase + "/" + url.PathEscape(bucket) + "/" + escapeKey(key) + "?" + q.Encode()
}

// KeyFromLocation 先按桶名定位，找不到时取最后一段并去掉查询串
func (s *MinioBlobStore) KeyFromLocation(bucket, location string) string {
	return KeyFromLocation(bucket, location)
}

// KeyFromLocation 把公开地址还原为桶内 key
func KeyFromLocation(bucket, location string) string {
	raw := location
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		raw = u.Path
	}

	parts := strings.Split(raw, "/")
	for i, p := range parts {
		if p == bucket && i < len(parts)-1 {
			return unescape(strings.Join(parts[i+1:], "/"))
		}
	}
	return unescape(parts[len(parts)-1])
}

func (s *MinioBlobStore) publicURL(bucket, key string) string {
	return s.opts.PublicBase + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	segs := strings.Split(key, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func unescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

// isPermanent 权限、桶不存在、对象过大等错误重试无意义
func isPermanent(err error) bool {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied", "NoSuchBucket", "InvalidBucketName", "EntityTooLarge",
		"InvalidAccessKeyId", "SignatureDoesNotMatch", "InvalidArgument":
		return true
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests
	}
	return false
}

// progressReader minio 每发送一段数据就调用一次 Read
type progressReader struct {
	total  int64
	loaded int64
	fn     func(loaded, total int64)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n := atomic.AddInt64(&r.loaded, int64(len(p)))
	if n > r.total {
		n = r.total
	}
	r.fn(n, r.total)
	return len(p), nil
}

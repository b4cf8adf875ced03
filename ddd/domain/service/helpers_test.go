package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 120, A: 255})
		}
	}
	return img
}

func jpegBytes(t *testing.T, w, h, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

// memBlobStore 带计数的内存对象存储
type memBlobStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putCalls []string
	deleted  []string

	inFlight    int32
	maxInFlight int32
	delay       time.Duration

	// failures key 前缀 -> 剩余失败次数
	failures  map[string]int
	permanent bool
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: make(map[string][]byte), failures: make(map[string]int)}
}

func (s *memBlobStore) failFor(substr string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[substr] = times
}

func (s *memBlobStore) Put(ctx context.Context, bucket, key string, data []byte, opts gateway.PutOptions) (*gateway.StoredObject, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		m := atomic.LoadInt32(&s.maxInFlight)
		if n <= m || atomic.CompareAndSwapInt32(&s.maxInFlight, m, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls = append(s.putCalls, key)
	for substr, left := range s.failures {
		if left != 0 && strings.Contains(key, substr) {
			if left > 0 {
				s.failures[substr] = left - 1
			}
			return nil, &entity.StoreError{Op: "put", Bucket: bucket, Key: key, Permanent: s.permanent, Cause: errors.New("connection reset")}
		}
	}
	if opts.Progress != nil {
		opts.Progress(int64(len(data))/2, int64(len(data)))
	}
	s.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return &gateway.StoredObject{
		Bucket:    bucket,
		Path:      key,
		PublicURL: s.ResolveURL(bucket, key, nil),
		Size:      int64(len(data)),
	}, nil
}

func (s *memBlobStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, bucket+"/"+key)
	delete(s.objects, bucket+"/"+key)
	return nil
}

func (s *memBlobStore) ResolveURL(bucket, path string, opts *gateway.TransformOptions) string {
	return "https://cdn.test/" + bucket + "/" + path
}

func (s *memBlobStore) KeyFromLocation(bucket, location string) string {
	return strings.TrimPrefix(location, "https://cdn.test/"+bucket+"/")
}

func (s *memBlobStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	return out
}

func (s *memBlobStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// fakeSleeper 记录退避时长，不真正等待
type fakeSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	return ctx.Err()
}

func (f *fakeSleeper) recorded() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.delays...)
}

// recordingReporter 记录进度回调
type recordingReporter struct {
	mu      sync.Mutex
	files   map[int][]float64
	batches [][2]int
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{files: make(map[int][]float64)}
}

func (r *recordingReporter) FileProgress(p entity.UploadProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[p.Index] = append(r.files[p.Index], p.Percentage)
}

func (r *recordingReporter) BatchProgress(completed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, [2]int{completed, total})
}

// immediateCleanup 直接从存储删除
type immediateCleanup struct {
	store    *memBlobStore
	mu       sync.Mutex
	requests []gateway.CleanupRequest
}

func (c *immediateCleanup) Schedule(ctx context.Context, req gateway.CleanupRequest) error {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	for _, l := range req.Locations {
		_ = c.store.Delete(ctx, req.Bucket, c.store.KeyFromLocation(req.Bucket, l))
	}
	return nil
}

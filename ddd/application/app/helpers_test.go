package app

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront-service/ddd/application/cqe"
	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/domain/port"
	"storefront-service/ddd/infrastructure/cleanup"
	"storefront-service/ddd/infrastructure/database/persistence"
	"storefront-service/ddd/infrastructure/database/po"
	"storefront-service/pkg/config"
)

const cdnBase = "https://cdn.test"

// memStore 内存对象存储，key 含 failOn 时返回永久错误
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Put(ctx context.Context, bucket, key string, data []byte, opts gateway.PutOptions) (*gateway.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && strings.Contains(key, s.failOn) {
		return nil, &entity.StoreError{Op: "put", Bucket: bucket, Key: key, Permanent: true, Cause: fmt.Errorf("rejected")}
	}
	s.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return &gateway.StoredObject{Bucket: bucket, Path: key, PublicURL: cdnBase + "/" + bucket + "/" + key, Size: int64(len(data))}, nil
}

func (s *memStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+key)
	s.deleted = append(s.deleted, bucket+"/"+key)
	return nil
}

func (s *memStore) ResolveURL(bucket, path string, opts *gateway.TransformOptions) string {
	url := cdnBase + "/" + bucket + "/" + path
	if opts == nil {
		return url
	}
	return fmt.Sprintf("%s?format=%s&height=%d&quality=%d&resize=%s&width=%d", url, opts.Format, opts.Height, opts.Quality, opts.Resize, opts.Width)
}

func (s *memStore) KeyFromLocation(bucket, location string) string {
	return strings.TrimPrefix(location, cdnBase+"/"+bucket+"/")
}

func (s *memStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *memStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func testMedia() config.MediaConfig {
	m := config.Default().Media
	m.BackoffBase = time.Millisecond
	return m
}

func newTestPipeline(store *memStore, progressStore port.ProgressStore) *Pipeline {
	return NewPipeline(testMedia(), store, cleanup.NewImmediateScheduler(cleanup.NewExecutor(store)), progressStore)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(po.AllModels()...))
	return db
}

func newTestCatalog(t *testing.T, store *memStore) CatalogApp {
	db := openTestDB(t)
	return NewCatalogAppWith(newTestPipeline(store, nil), persistence.NewProductRepository(db), persistence.NewCategoryRepository(db))
}

func sampleImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	return img
}

func jpegFile(t *testing.T, name string) cqe.UploadFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, sampleImage(40, 30), &jpeg.Options{Quality: 90}))
	return cqe.UploadFile{Name: name, MediaType: "image/jpeg", Content: buf.Bytes()}
}

func pngFile(t *testing.T, name string) cqe.UploadFile {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, sampleImage(20, 20)))
	return cqe.UploadFile{Name: name, MediaType: "image/png", Content: buf.Bytes()}
}

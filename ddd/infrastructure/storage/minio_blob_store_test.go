package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
)

type fakeObjectClient struct {
	putErr    error
	removeErr error
	puts      []minio.PutObjectOptions
	removed   []string
}

func (f *fakeObjectClient) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.puts = append(f.puts, opts)
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	buf := make([]byte, 4)
	for {
		n, err := r.Read(buf)
		if opts.Progress != nil && n > 0 {
			_, _ = opts.Progress.Read(buf[:n])
		}
		if err != nil {
			break
		}
	}
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func (f *fakeObjectClient) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	f.removed = append(f.removed, bucket+"/"+key)
	return f.removeErr
}

func newTestStore(client ObjectClient, transform string) *MinioBlobStore {
	return NewMinioBlobStore(client, MinioBlobStoreOptions{
		PublicBase:    "http://localhost:9000/",
		TransformBase: transform,
		MaxObjectSize: 16,
	})
}

func TestPutSetsHeadersAndReportsProgress(t *testing.T) {
	client := &fakeObjectClient{}
	store := newTestStore(client, "")

	var last int64
	obj, err := store.Put(context.Background(), "product-images", "products/1-abc-a b.jpg", []byte("0123456789"), gateway.PutOptions{
		ContentType:  "image/jpeg",
		CacheControl: "max-age=31536000",
		Progress:     func(loaded, total int64) { last = loaded },
	})
	require.NoError(t, err)
	assert.Equal(t, "products/1-abc-a b.jpg", obj.Path)
	assert.Equal(t, "http://localhost:9000/product-images/products/1-abc-a%20b.jpg", obj.PublicURL)
	assert.Equal(t, int64(10), obj.Size)
	assert.Equal(t, int64(10), last)

	require.Len(t, client.puts, 1)
	assert.Equal(t, "image/jpeg", client.puts[0].ContentType)
	assert.Equal(t, "max-age=31536000", client.puts[0].CacheControl)
}

func TestPutRejectsOversizedPermanently(t *testing.T) {
	client := &fakeObjectClient{}
	_, err := newTestStore(client, "").Put(context.Background(), "b", "k", make([]byte, 17), gateway.PutOptions{})

	var se *entity.StoreError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Permanent)
	assert.False(t, entity.IsRetryable(err))
	assert.Empty(t, client.puts)
}

func TestPutClassifiesErrors(t *testing.T) {
	transient := &fakeObjectClient{putErr: errors.New("connection reset by peer")}
	_, err := newTestStore(transient, "").Put(context.Background(), "b", "k", []byte("x"), gateway.PutOptions{})
	assert.True(t, entity.IsRetryable(err))

	denied := &fakeObjectClient{putErr: minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}}
	_, err = newTestStore(denied, "").Put(context.Background(), "b", "k", []byte("x"), gateway.PutOptions{})
	assert.False(t, entity.IsRetryable(err))

	throttled := &fakeObjectClient{putErr: minio.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}}
	_, err = newTestStore(throttled, "").Put(context.Background(), "b", "k", []byte("x"), gateway.PutOptions{})
	assert.True(t, entity.IsRetryable(err))
}

func TestDeleteIsIdempotent(t *testing.T) {
	missing := &fakeObjectClient{removeErr: minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}}
	store := newTestStore(missing, "")
	assert.NoError(t, store.Delete(context.Background(), "b", "gone.jpg"))
	assert.NoError(t, store.Delete(context.Background(), "b", "gone.jpg"))
	assert.NoError(t, store.Delete(context.Background(), "b", ""))
	assert.Len(t, missing.removed, 2)

	broken := &fakeObjectClient{removeErr: errors.New("timeout")}
	var se *entity.StoreError
	assert.ErrorAs(t, newTestStore(broken, "").Delete(context.Background(), "b", "k"), &se)
}

func TestResolveURLIsDeterministic(t *testing.T) {
	store := newTestStore(&fakeObjectClient{}, "https://img.example.com/render/")

	opts := &gateway.TransformOptions{Width: 1200, Height: 1200, Resize: "contain", Format: "webp", Quality: 90}
	a := store.ResolveURL("product-images", "products/a.jpg", opts)
	b := store.ResolveURL("product-images", "products/a.jpg", opts)
	assert.Equal(t, a, b)
	assert.Equal(t, "https://img.example.com/render/product-images/products/a.jpg?format=webp&height=1200&quality=90&resize=contain&width=1200", a)

	defaults := store.ResolveURL("product-images", "http://localhost:9000/product-images/products/a.jpg", &gateway.TransformOptions{})
	assert.Equal(t, "https://img.example.com/render/product-images/products/a.jpg?format=webp&height=300&quality=80&resize=cover&width=400", defaults)
}

func TestResolveURLWithoutTransformSupport(t *testing.T) {
	store := newTestStore(&fakeObjectClient{}, "")
	stored := "http://localhost:9000/product-images/products/a.jpg"

	assert.Equal(t, stored, store.ResolveURL("product-images", stored, &gateway.TransformOptions{Width: 10}))
	assert.Equal(t, stored, store.ResolveURL("product-images", "products/a.jpg", nil))
}

func TestKeyFromLocation(t *testing.T) {
	cases := []struct {
		location string
		want     string
	}{
		{"http://localhost:9000/product-images/products/1-abc-a.jpg", "products/1-abc-a.jpg"},
		{"https://x.supabase.co/storage/v1/object/public/product-images/1-abc-a.jpg?width=400", "1-abc-a.jpg"},
		{"https://cdn.example.com/other/legacy.jpg?v=2", "legacy.jpg"},
		{"http://localhost:9000/product-images/products/a%20b.jpg", "products/a b.jpg"},
		{"plain.jpg", "plain.jpg"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, KeyFromLocation("product-images", c.location), c.location)
	}
}

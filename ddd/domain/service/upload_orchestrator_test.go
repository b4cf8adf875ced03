package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/vo"
)

const mb = 1024 * 1024

func newTestOrchestrator(store *memBlobStore, sleeper *fakeSleeper) UploadOrchestrator {
	return NewUploadOrchestrator(NewImageTranscoder(), store, OrchestratorOptions{
		ConcurrencyLimit: 3,
		Retry: vo.RetryPolicy{
			MaxRetries: 3,
			Delay:      vo.ExponentialBackoff(time.Second),
			Sleep:      sleeper.Sleep,
		},
		CacheControl: "max-age=31536000",
	})
}

func baseRequest(files ...entity.RawAsset) UploadBatchRequest {
	return UploadBatchRequest{
		Files:       files,
		Destination: UploadDestination{Bucket: "product-images", Folder: "products"},
		MaxSize:     10 * mb,
		Transcode:   defaultTranscodeOptions(),
		OnFileError: vo.FileErrorSkip,
	}
}

func TestUploadBatchScenarioMixedFailures(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})

	fileA := entity.RawAsset{Name: "a.jpg", MediaType: "image/jpeg", Size: 2 * mb, Content: jpegBytes(t, 64, 64, 90)}
	fileB := entity.RawAsset{Name: "b.jpg", MediaType: "image/jpeg", Size: 12 * mb, Content: jpegBytes(t, 64, 64, 90)}
	fileC := entity.RawAsset{Name: "c.jpg", MediaType: "image/jpeg", Size: 1 * mb, Content: []byte("corrupt")}

	req := baseRequest(fileA, fileB, fileC)
	req.ConcurrencyLimit = 3
	req.MaxRetries = 3

	outcome, err := o.UploadBatch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, outcome.Successes, 1)
	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, 0, outcome.Successes[0].Index)
	assert.Equal(t, "a.jpg", outcome.Successes[0].Name)

	assert.Equal(t, 1, outcome.Failures[0].Index)
	assert.Equal(t, "validation", outcome.Failures[0].Kind)
	assert.Equal(t, 2, outcome.Failures[1].Index)
	assert.Equal(t, "decode", outcome.Failures[1].Kind)
	assert.Equal(t, "1 of 3 images processed successfully", outcome.Summary())
	assert.Len(t, store.keys(), 1)
}

func TestUploadBatchIsolatesSingleCorruptFile(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})

	files := make([]entity.RawAsset, 0, 7)
	for i := 0; i < 7; i++ {
		content := jpegBytes(t, 32, 32, 90)
		if i == 4 {
			content = []byte("not an image")
		}
		files = append(files, entity.NewRawAsset(fmt.Sprintf("f%d.jpg", i), "image/jpeg", content))
	}

	outcome, err := o.UploadBatch(context.Background(), baseRequest(files...))
	require.NoError(t, err)
	assert.Len(t, outcome.Successes, 6)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, 4, outcome.Failures[0].Index)
	assert.Equal(t, len(files), len(outcome.Successes)+len(outcome.Failures))
}

func TestUploadBatchPreservesInputOrder(t *testing.T) {
	store := newMemBlobStore()
	store.delay = 5 * time.Millisecond
	o := newTestOrchestrator(store, &fakeSleeper{})

	files := make([]entity.RawAsset, 0, 8)
	for i := 0; i < 8; i++ {
		files = append(files, entity.NewRawAsset(fmt.Sprintf("img%d.png", i), "image/png", pngBytes(t, 10+i, 10)))
	}

	outcome, err := o.UploadBatch(context.Background(), baseRequest(files...))
	require.NoError(t, err)
	require.Len(t, outcome.Successes, 8)
	for i, s := range outcome.Successes {
		assert.Equal(t, i, s.Index)
		assert.True(t, strings.HasSuffix(s.Path, fmt.Sprintf("-img%d.png", i)), s.Path)
		assert.True(t, strings.HasPrefix(s.Path, "products/"), s.Path)
	}
}

func TestUploadBatchConcurrencyBound(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 10} {
		t.Run(fmt.Sprintf("files=%d", n), func(t *testing.T) {
			store := newMemBlobStore()
			store.delay = 10 * time.Millisecond
			o := newTestOrchestrator(store, &fakeSleeper{})

			files := make([]entity.RawAsset, 0, n)
			for i := 0; i < n; i++ {
				files = append(files, entity.NewRawAsset("x.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)))
			}
			req := baseRequest(files...)
			req.ConcurrencyLimit = 3

			outcome, err := o.UploadBatch(context.Background(), req)
			require.NoError(t, err)
			assert.Len(t, outcome.Successes, n)
			assert.LessOrEqual(t, int(store.maxInFlight), 3)
		})
	}
}

func TestUploadBatchUniqueNamesForDuplicates(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})

	img := jpegBytes(t, 16, 16, 90)
	outcome, err := o.UploadBatch(context.Background(), baseRequest(
		entity.NewRawAsset("photo.jpg", "image/jpeg", img),
		entity.NewRawAsset("photo.jpg", "image/jpeg", img),
	))
	require.NoError(t, err)
	require.Len(t, outcome.Successes, 2)
	assert.NotEqual(t, outcome.Successes[0].Path, outcome.Successes[1].Path)
	assert.Len(t, store.keys(), 2)
}

func TestUploadBatchRetriesWithIncreasingBackoff(t *testing.T) {
	store := newMemBlobStore()
	store.failFor("flaky", 2)
	sleeper := &fakeSleeper{}
	o := newTestOrchestrator(store, sleeper)

	outcome, err := o.UploadBatch(context.Background(), baseRequest(
		entity.NewRawAsset("flaky.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
	))
	require.NoError(t, err)
	assert.Len(t, outcome.Successes, 1)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.recorded())
	assert.Len(t, store.putCalls, 3)
}

func TestUploadBatchExhaustedRetriesRecorded(t *testing.T) {
	store := newMemBlobStore()
	store.failFor("down", -1)
	sleeper := &fakeSleeper{}
	o := newTestOrchestrator(store, sleeper)

	outcome, err := o.UploadBatch(context.Background(), baseRequest(
		entity.NewRawAsset("down.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("ok.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
	))
	require.NoError(t, err)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, "store", outcome.Failures[0].Kind)
	assert.Len(t, outcome.Successes, 1)

	delays := sleeper.recorded()
	require.Len(t, delays, 3)
	for i := 1; i < len(delays); i++ {
		assert.Greater(t, delays[i], delays[i-1])
	}
}

func TestUploadBatchPermanentStoreErrorNotRetried(t *testing.T) {
	store := newMemBlobStore()
	store.permanent = true
	store.failFor("huge", -1)
	sleeper := &fakeSleeper{}
	o := newTestOrchestrator(store, sleeper)

	outcome, err := o.UploadBatch(context.Background(), baseRequest(
		entity.NewRawAsset("huge.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
	))
	var bp *entity.BatchPartialFailure
	require.ErrorAs(t, err, &bp)
	assert.True(t, bp.All)
	assert.Len(t, outcome.Failures, 1)
	assert.Empty(t, sleeper.recorded())
	assert.Len(t, store.putCalls, 1)
}

func TestUploadBatchAbortBatchStopsLaterBatches(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})

	files := []entity.RawAsset{
		entity.NewRawAsset("ok0.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("bad.txt", "text/plain", []byte("hello")),
		entity.NewRawAsset("ok2.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("ok3.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
	}
	req := baseRequest(files...)
	req.ConcurrencyLimit = 2
	req.OnFileError = vo.FileErrorAbortBatch

	outcome, err := o.UploadBatch(context.Background(), req)
	var bp *entity.BatchPartialFailure
	require.ErrorAs(t, err, &bp)
	assert.True(t, bp.Aborted)

	require.Len(t, outcome.Successes, 1)
	assert.Equal(t, 0, outcome.Successes[0].Index)
	require.Len(t, outcome.Failures, 3)
	assert.Equal(t, "validation", outcome.Failures[0].Kind)
	assert.Equal(t, "aborted", outcome.Failures[1].Kind)
	assert.Equal(t, "aborted", outcome.Failures[2].Kind)
	assert.Equal(t, 4, len(outcome.Successes)+len(outcome.Failures))
}

func TestUploadBatchAllFailed(t *testing.T) {
	o := newTestOrchestrator(newMemBlobStore(), &fakeSleeper{})

	outcome, err := o.UploadBatch(context.Background(), baseRequest(
		entity.NewRawAsset("a.pdf", "application/pdf", []byte("x")),
		entity.NewRawAsset("b.pdf", "application/pdf", []byte("y")),
	))
	var bp *entity.BatchPartialFailure
	require.ErrorAs(t, err, &bp)
	assert.True(t, bp.All)
	assert.Len(t, outcome.Failures, 2)
}

func TestUploadBatchEmpty(t *testing.T) {
	o := newTestOrchestrator(newMemBlobStore(), &fakeSleeper{})
	outcome, err := o.UploadBatch(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, outcome.Total)
}

func TestUploadBatchProgressIsMonotonic(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})
	reporter := newRecordingReporter()

	req := baseRequest(
		entity.NewRawAsset("a.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("b.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
	)
	req.Progress = reporter

	_, err := o.UploadBatch(context.Background(), req)
	require.NoError(t, err)

	for idx, series := range reporter.files {
		require.NotEmpty(t, series, "file %d", idx)
		for i := 1; i < len(series); i++ {
			assert.GreaterOrEqual(t, series[i], series[i-1])
		}
		assert.InDelta(t, 100.0, series[len(series)-1], 1e-9)
	}
	require.Len(t, reporter.batches, 2)
	for _, b := range reporter.batches {
		assert.Equal(t, 2, b[1])
	}
}

func TestUploadBatchAbandonedContext(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})
	reporter := newRecordingReporter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := baseRequest(
		entity.NewRawAsset("a.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("b.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("c.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
		entity.NewRawAsset("d.jpg", "image/jpeg", jpegBytes(t, 16, 16, 90)),
	)
	req.Progress = reporter

	outcome, err := o.UploadBatch(ctx, req)
	require.Error(t, err)
	assert.Len(t, outcome.Failures, 4)
	for _, f := range outcome.Failures {
		assert.Equal(t, "cancelled", f.Kind)
	}
	assert.Empty(t, reporter.files)
	assert.Empty(t, store.putCalls)
}

func TestUploadBatchVariantsStoredBesideMainObject(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})

	req := baseRequest(entity.NewRawAsset("photo.jpg", "image/jpeg", jpegBytes(t, 1000, 800, 90)))
	req.Variants = true

	outcome, err := o.UploadBatch(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, outcome.Successes, 1)

	res := outcome.Successes[0]
	require.Len(t, res.Variants, 3)
	base := strings.TrimSuffix(res.Path, ".jpg")
	for _, name := range []string{"thumbnail", "medium", "large"} {
		assert.Equal(t, "https://cdn.test/product-images/"+base+"_"+name+".jpg", res.Variants[name])
	}
	assert.Len(t, store.keys(), 4)
	assert.NotContains(t, res.Variants, "original")
}

func TestUploadBatchVariantsOffByDefault(t *testing.T) {
	store := newMemBlobStore()
	o := newTestOrchestrator(store, &fakeSleeper{})

	outcome, err := o.UploadBatch(context.Background(), baseRequest(entity.NewRawAsset("photo.jpg", "image/jpeg", jpegBytes(t, 64, 64, 90))))
	require.NoError(t, err)
	require.Len(t, outcome.Successes, 1)
	assert.Nil(t, outcome.Successes[0].Variants)
	assert.Len(t, store.keys(), 1)
}

func TestUploadBatchVariantFailureDiscardsFile(t *testing.T) {
	store := newMemBlobStore()
	store.permanent = true
	store.failFor("_large", -1)
	o := newTestOrchestrator(store, &fakeSleeper{})

	req := baseRequest(
		entity.NewRawAsset("a.jpg", "image/jpeg", jpegBytes(t, 300, 300, 90)),
		entity.NewRawAsset("b.jpg", "image/jpeg", jpegBytes(t, 300, 300, 90)),
	)
	req.Variants = true

	outcome, err := o.UploadBatch(context.Background(), req)
	require.Error(t, err)
	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, "store", outcome.Failures[0].Kind)
	// 主图与已上传的派生图都被回收
	assert.Empty(t, store.keys())
	assert.Len(t, store.deletedKeys(), 6)
}

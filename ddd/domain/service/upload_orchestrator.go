package service

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/gateway"
	"storefront-service/ddd/domain/port"
	"storefront-service/ddd/domain/vo"
	"storefront-service/pkg/logger"
)

// UploadDestination 目标桶与目录
type UploadDestination struct {
	Bucket string
	Folder string
}

// UploadBatchRequest 一次批量上传
type UploadBatchRequest struct {
	Files       []entity.RawAsset
	Destination UploadDestination
	// ConcurrencyLimit 同时进行中的 put 上限，<=0 使用默认值
	ConcurrencyLimit int
	// MaxRetries 0 使用默认值，负数表示不重试
	MaxRetries  int
	MaxSize     int64
	Transcode   TranscodeOptions
	OnFileError vo.FileErrorPolicy
	Progress    port.ProgressReporter
	// Variants 主图之外再上传预设尺寸的派生图，key 为 <主图key去扩展名>_<预设名><扩展名>
	Variants    bool
}

// UploadOrchestrator 批量上传编排
type UploadOrchestrator interface {
	// UploadBatch 单文件失败只记录在结果中。全部失败或 abortBatch 提前结束时同时返回结果与 *entity.BatchPartialFailure。
	UploadBatch(ctx context.Context, req UploadBatchRequest) (*entity.BatchOutcome, error)
}

// OrchestratorOptions 编排器默认参数
type OrchestratorOptions struct {
	ConcurrencyLimit int
	Retry            vo.RetryPolicy
	CacheControl     string
	Now              func() time.Time
	Token            func() string
}

type uploadOrchestratorImpl struct {
	transcoder ImageTranscoder
	store      gateway.BlobStore
	opts       OrchestratorOptions
}

// NewUploadOrchestrator 创建上传编排器
func NewUploadOrchestrator(transcoder ImageTranscoder, store gateway.BlobStore, opts OrchestratorOptions) UploadOrchestrator {
	if opts.ConcurrencyLimit <= 0 {
		opts.ConcurrencyLimit = 3
	}
	if opts.Retry.Delay == nil && opts.Retry.MaxRetries == 0 {
		opts.Retry = vo.NewExponentialRetryPolicy(3, time.Second)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Token == nil {
		opts.Token = randomToken
	}
	return &uploadOrchestratorImpl{transcoder: transcoder, store: store, opts: opts}
}

type fileResult struct {
	success *entity.UploadResult
	err     error
}

func (o *uploadOrchestratorImpl) UploadBatch(ctx context.Context, req UploadBatchRequest) (*entity.BatchOutcome, error) {
	total := len(req.Files)
	outcome := &entity.BatchOutcome{Total: total}
	if total == 0 {
		return outcome, nil
	}

	limit := req.ConcurrencyLimit
	if limit <= 0 {
		limit = o.opts.ConcurrencyLimit
	}
	policy := o.opts.Retry
	switch {
	case req.MaxRetries > 0:
		policy.MaxRetries = req.MaxRetries
	case req.MaxRetries < 0:
		policy.MaxRetries = 0
	}
	reporter := newGuardedReporter(ctx, req.Progress)

	logger.Info("upload batch started", map[string]interface{}{
		"bucket":      req.Destination.Bucket,
		"folder":      req.Destination.Folder,
		"files":       total,
		"concurrency": limit,
		"max_retries": policy.MaxRetries,
	})

	results := make([]fileResult, total)
	var completed int32
	aborted := false

	for start := 0; start < total; start += limit {
		end := start + limit
		if end > total {
			end = total
		}

		if aborted || ctx.Err() != nil {
			skipErr := entity.ErrNotAttempted
			if !aborted {
				skipErr = ctx.Err()
			}
			for i := start; i < end; i++ {
				results[i] = fileResult{err: skipErr}
			}
			continue
		}

		// 同一批次内并发，批次之间串行；单个文件失败不取消兄弟任务
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = o.processFile(ctx, i, req, policy, reporter)
				reporter.BatchProgress(int(atomic.AddInt32(&completed, 1)), total)
				return nil
			})
		}
		_ = g.Wait()

		if req.OnFileError == vo.FileErrorAbortBatch {
			for i := start; i < end; i++ {
				if results[i].err != nil {
					aborted = true
					break
				}
			}
		}
	}

	for i, r := range results {
		if r.err != nil {
			kind := entity.ErrorKind(r.err)
			batchFiles.WithLabelValues(kind).Inc()
			outcome.Failures = append(outcome.Failures, entity.FileFailure{
				Index: i,
				Name:  req.Files[i].Name,
				Kind:  kind,
				Err:   r.err,
			})
			continue
		}
		batchFiles.WithLabelValues("").Inc()
		outcome.Successes = append(outcome.Successes, *r.success)
	}

	logger.Infof("upload batch finished bucket=%s: %s", req.Destination.Bucket, outcome.Summary())

	if aborted || outcome.AllFailed() {
		return outcome, outcome.PartialFailure(aborted)
	}
	return outcome, nil
}

// processFile 校验 -> 转码 -> 命名 -> 带重试的 put
func (o *uploadOrchestratorImpl) processFile(ctx context.Context, index int, req UploadBatchRequest, policy vo.RetryPolicy, reporter *guardedReporter) fileResult {
	raw := req.Files[index]
	if err := raw.Validate(req.MaxSize); err != nil {
		o.logFailure(index, raw.Name, err)
		return fileResult{err: err}
	}
	reporter.FileProgress(index, 0, raw.Size)

	processed, err := o.transcoder.Transcode(ctx, raw, req.Transcode)
	if err != nil {
		o.logFailure(index, raw.Name, err)
		return fileResult{err: err}
	}

	var variants []ImageVariant
	if req.Variants {
		variants, err = o.transcoder.GenerateVariants(ctx, raw, req.Transcode.Format)
		if err != nil && req.Transcode.OnError != vo.TranscodePassthrough {
			o.logFailure(index, raw.Name, err)
			return fileResult{err: err}
		}
		// passthrough 策略下派生图失败只上传主图
	}

	key := o.objectKey(req.Destination.Folder, processed.Name)
	progress := func(loaded, total int64) {
		reporter.FileProgress(index, loaded, total)
	}
	stored, err := o.putWithRetry(ctx, index, req.Destination.Bucket, key, processed, policy, progress)
	if err != nil {
		o.logFailure(index, raw.Name, err)
		return fileResult{err: err}
	}

	result := &entity.UploadResult{
		Index:     index,
		Name:      raw.Name,
		Bucket:    stored.Bucket,
		Path:      stored.Path,
		PublicURL: stored.PublicURL,
		Size:      stored.Size,
	}
	if len(variants) > 0 {
		urls, err := o.putVariants(ctx, index, req.Destination.Bucket, key, variants, policy)
		if err != nil {
			o.discard(req.Destination.Bucket, key)
			o.logFailure(index, raw.Name, err)
			return fileResult{err: err}
		}
		result.Variants = urls
	}

	reporter.FileProgress(index, stored.Size, stored.Size)
	return fileResult{success: result}
}

// putVariants 在同一个并发槽位里依次上传派生图；任一失败则回收已上传的派生图
func (o *uploadOrchestratorImpl) putVariants(ctx context.Context, index int, bucket, key string, variants []ImageVariant, policy vo.RetryPolicy) (map[string]string, error) {
	urls := make(map[string]string, len(variants))
	var stored []string
	for _, v := range variants {
		if v.Name == "original" {
			continue
		}
		vkey := variantName(key, v.Name)
		obj, err := o.putWithRetry(ctx, index, bucket, vkey, v.Asset, policy, nil)
		if err != nil {
			for _, k := range stored {
				o.discard(bucket, k)
			}
			return nil, err
		}
		stored = append(stored, vkey)
		urls[v.Name] = obj.PublicURL
	}
	return urls, nil
}

// discard 尽力删除，失败只记日志，由生命周期清理兜底
func (o *uploadOrchestratorImpl) discard(bucket, key string) {
	if err := o.store.Delete(context.Background(), bucket, key); err != nil {
		logger.Warn("discard partial upload failed", map[string]interface{}{
			"bucket": bucket,
			"key":    key,
			"error":  err.Error(),
		})
	}
}

// putWithRetry 只重试非永久性的 StoreError。
// 已发出的 put 不随 ctx 取消，调用方放弃后结果直接丢弃。
func (o *uploadOrchestratorImpl) putWithRetry(ctx context.Context, index int, bucket, key string, asset *entity.ProcessedAsset, policy vo.RetryPolicy, progress func(loaded, total int64)) (*gateway.StoredObject, error) {
	putCtx := context.WithoutCancel(ctx)
	size := asset.Size()
	opts := gateway.PutOptions{
		ContentType:  asset.MediaType,
		CacheControl: o.opts.CacheControl,
		Progress:     progress,
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if err := policy.Wait(ctx, attempt); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		putInFlight.Inc()
		stored, err := o.store.Put(putCtx, bucket, key, asset.Content, opts)
		putInFlight.Dec()
		if err == nil {
			putAttempts.WithLabelValues("ok").Inc()
			if stored.Size == 0 {
				stored.Size = size
			}
			return stored, nil
		}
		putAttempts.WithLabelValues("error").Inc()

		if !entity.IsRetryable(err) || attempt >= policy.MaxRetries {
			return nil, err
		}
		logger.Warn("blob put failed, retrying", map[string]interface{}{
			"index":   index,
			"key":     key,
			"attempt": attempt + 1,
			"delay":   policy.DelayFor(attempt + 1).String(),
			"error":   err.Error(),
		})
	}
}

func (o *uploadOrchestratorImpl) logFailure(index int, name string, err error) {
	logger.Warn("upload file failed", map[string]interface{}{
		"index": index,
		"name":  name,
		"kind":  entity.ErrorKind(err),
		"error": err.Error(),
	})
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectKey folder/<毫秒时间戳>-<随机串>-<文件名>，同名文件也不会冲突
func (o *uploadOrchestratorImpl) objectKey(folder, name string) string {
	base := unsafeKeyChars.ReplaceAllString(path.Base(strings.ReplaceAll(name, "\\", "/")), "_")
	if base == "" || base == "." || base == "_" {
		base = "image"
	}
	file := fmt.Sprintf("%d-%s-%s", o.opts.Now().UnixMilli(), o.opts.Token(), base)
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return file
	}
	return folder + "/" + file
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// guardedReporter 保证单文件百分比单调不减，调用方放弃后不再回调
type guardedReporter struct {
	ctx   context.Context
	inner port.ProgressReporter
	mu    sync.Mutex
	last  map[int]float64
}

func newGuardedReporter(ctx context.Context, inner port.ProgressReporter) *guardedReporter {
	if inner == nil {
		inner = port.NopReporter{}
	}
	return &guardedReporter{ctx: ctx, inner: inner, last: make(map[int]float64)}
}

func (r *guardedReporter) FileProgress(index int, loaded, total int64) {
	if r.ctx.Err() != nil {
		return
	}
	p := entity.NewUploadProgress(index, loaded, total)
	r.mu.Lock()
	prev, seen := r.last[index]
	if seen && p.Percentage < prev {
		r.mu.Unlock()
		return
	}
	r.last[index] = p.Percentage
	r.inner.FileProgress(p)
	r.mu.Unlock()
}

func (r *guardedReporter) BatchProgress(completed, total int) {
	if r.ctx.Err() != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inner.BatchProgress(completed, total)
}

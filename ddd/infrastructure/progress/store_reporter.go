package progress

import (
	"context"
	"sync"
	"time"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/port"
	"storefront-service/pkg/logger"
)

// StoreReporter 把进度回调聚合成快照并写入 ProgressStore。
// 中间进度按 minInterval 节流，开始、完成与批次计数总是写入。
type StoreReporter struct {
	ctx         context.Context
	store       port.ProgressStore
	minInterval time.Duration

	mu          sync.Mutex
	snapshot    port.ProgressSnapshot
	lastPersist time.Time
}

// NewStoreReporter 创建进度上报器
func NewStoreReporter(ctx context.Context, store port.ProgressStore, uploadID string, total int, minInterval time.Duration) *StoreReporter {
	r := &StoreReporter{
		ctx:         context.WithoutCancel(ctx),
		store:       store,
		minInterval: minInterval,
		snapshot: port.ProgressSnapshot{
			UploadID: uploadID,
			Total:    total,
			Files:    make([]entity.UploadProgress, total),
		},
	}
	for i := range r.snapshot.Files {
		r.snapshot.Files[i].Index = i
	}
	r.persist(true)
	return r
}

func (r *StoreReporter) FileProgress(p entity.UploadProgress) {
	r.mu.Lock()
	if p.Index < 0 || p.Index >= len(r.snapshot.Files) {
		r.mu.Unlock()
		return
	}
	r.snapshot.Files[p.Index] = p
	force := p.Percentage == 0 || p.Percentage >= 100
	r.mu.Unlock()
	r.persist(force)
}

func (r *StoreReporter) BatchProgress(completed, total int) {
	r.mu.Lock()
	if completed > r.snapshot.Completed {
		r.snapshot.Completed = completed
	}
	r.snapshot.Total = total
	r.mu.Unlock()
	r.persist(true)
}

// Finish 标记完成
func (r *StoreReporter) Finish() {
	r.mu.Lock()
	r.snapshot.Done = true
	r.mu.Unlock()
	r.persist(true)
}

// Snapshot 当前快照副本
func (r *StoreReporter) Snapshot() port.ProgressSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.snapshot
	s.Files = append([]entity.UploadProgress(nil), r.snapshot.Files...)
	return s
}

func (r *StoreReporter) persist(force bool) {
	r.mu.Lock()
	now := time.Now()
	if !force && now.Sub(r.lastPersist) < r.minInterval {
		r.mu.Unlock()
		return
	}
	r.lastPersist = now
	s := r.snapshot
	s.Files = append([]entity.UploadProgress(nil), r.snapshot.Files...)
	r.mu.Unlock()

	if err := r.store.Save(r.ctx, &s); err != nil {
		logger.Warn("persist upload progress failed", map[string]interface{}{
			"upload_id": s.UploadID,
			"error":     err.Error(),
		})
	}
}

package port

import (
	"context"

	"storefront-service/ddd/domain/entity"
)

// ProgressReporter 接收上传进度。可能对每个文件回调零次或多次，调用方不能依赖回调间隔。
type ProgressReporter interface {
	FileProgress(p entity.UploadProgress)
	BatchProgress(completed, total int)
}

// ProgressSnapshot 某次上传的进度快照
type ProgressSnapshot struct {
	UploadID  string                  `json:"upload_id"`
	Completed int                     `json:"completed"`
	Total     int                     `json:"total"`
	Files     []entity.UploadProgress `json:"files"`
	Done      bool                    `json:"done"`
}

// ProgressStore 持久化进度快照，供轮询查询
type ProgressStore interface {
	Save(ctx context.Context, snapshot *ProgressSnapshot) error
	Get(ctx context.Context, uploadID string) (*ProgressSnapshot, error)
}

// NopReporter 丢弃所有进度
type NopReporter struct{}

func (NopReporter) FileProgress(entity.UploadProgress) {}
func (NopReporter) BatchProgress(int, int)             {}

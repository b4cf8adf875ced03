package gateway

import (
	"context"
	"time"
)

// CleanupRequest 一组需要删除的旧图片地址
type CleanupRequest struct {
	RequestID   string    `json:"request_id"`
	Bucket      string    `json:"bucket"`
	Locations   []string  `json:"locations"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// CleanupScheduler 负责尽力删除被替换的图片，失败只记录日志
type CleanupScheduler interface {
	Schedule(ctx context.Context, req CleanupRequest) error
}

package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-service/ddd/domain/port"
	"storefront-service/pkg/redisclient"
)

// ErrProgressNotFound 上传 ID 不存在或已过期
var ErrProgressNotFound = errors.New("upload progress not found")

const keyPrefix = "storefront:upload:progress:"

// RedisStore 以上传 ID 为 key 保存进度快照
type RedisStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 进度存储
func NewRedisStore(client *redisclient.Client, ttl time.Duration) port.ProgressStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, snapshot *port.ProgressSnapshot) error {
	if snapshot == nil || snapshot.UploadID == "" {
		return fmt.Errorf("progress snapshot without upload id")
	}
	return s.client.SetJSON(ctx, keyPrefix+snapshot.UploadID, snapshot, s.ttl)
}

func (s *RedisStore) Get(ctx context.Context, uploadID string) (*port.ProgressSnapshot, error) {
	var snapshot port.ProgressSnapshot
	if err := s.client.GetJSON(ctx, keyPrefix+uploadID, &snapshot); err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

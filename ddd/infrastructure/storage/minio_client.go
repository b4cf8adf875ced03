package storage

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storefront-service/pkg/config"
)

// putAttempts minio-go 默认每个请求重试 10 次；重试统一交给上传编排器的退避策略
const putAttempts = 1

// NewMinioClient 按配置创建客户端，关闭 SDK 内部重试
func NewMinioClient(cfg config.MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:     cfg.UseSSL,
		Region:     cfg.Region,
		MaxRetries: putAttempts,
	})
}

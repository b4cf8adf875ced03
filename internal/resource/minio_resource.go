package resource

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"

	"storefront-service/ddd/infrastructure/storage"
	"storefront-service/pkg/assert"
	"storefront-service/pkg/config"
	"storefront-service/pkg/logger"
	"storefront-service/pkg/manager"
)

var (
	minioResourceOnce      sync.Once
	singletonMinioResource *MinioResource
)

// MinioResource MinIO资源管理器，启动时确保商品/分类图片桶存在
type MinioResource struct {
	client     *minio.Client
	buckets    []string
	publicBase string
}

// DefaultMinioResource 获取MinIO资源单例
func DefaultMinioResource() *MinioResource {
	assert.NotCircular()
	minioResourceOnce.Do(func() {
		singletonMinioResource = &MinioResource{}
	})
	assert.NotNil(singletonMinioResource)
	return singletonMinioResource
}

// MustOpen 初始化MinIO资源
func (r *MinioResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MinioResource")
	}

	minioCfg := cfg.Minio
	if minioCfg.Endpoint == "" {
		panic("minio endpoint is required")
	}

	client, err := storage.NewMinioClient(minioCfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create minio client: %v", err))
	}

	r.client = client
	r.buckets = minioCfg.Buckets
	r.publicBase = cfg.Public.StorageBase
	if r.publicBase == "" {
		scheme := "http"
		if minioCfg.UseSSL {
			scheme = "https"
		}
		r.publicBase = scheme + "://" + strings.TrimRight(minioCfg.Endpoint, "/")
	}

	for _, bucket := range r.buckets {
		r.ensureBucket(bucket, minioCfg.Region)
	}

	logger.Info("MinIO resource initialized", map[string]interface{}{
		"endpoint":    minioCfg.Endpoint,
		"buckets":     r.buckets,
		"public_base": r.publicBase,
	})
}

// ensureBucket 确保桶存在，并开放匿名读
func (r *MinioResource) ensureBucket(bucket, region string) {
	ctx := context.Background()
	exists, err := r.client.BucketExists(ctx, bucket)
	if err != nil {
		panic(fmt.Sprintf("failed to check minio bucket %s: %v", bucket, err))
	}
	if !exists {
		if err := r.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			panic(fmt.Sprintf("failed to create minio bucket %s: %v", bucket, err))
		}
	}
	if err := r.client.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
		logger.Warn("Failed to set public read policy", map[string]interface{}{
			"bucket": bucket,
			"error":  err.Error(),
		})
	}
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

// GetClient 获取MinIO客户端
func (r *MinioResource) GetClient() *minio.Client {
	return r.client
}

// Buckets 已初始化的桶
func (r *MinioResource) Buckets() []string {
	return r.buckets
}

// PublicBase 对象公开访问前缀
func (r *MinioResource) PublicBase() string {
	return r.publicBase
}

// Close 释放资源
func (r *MinioResource) Close() {
	// minio-go客户端无需关闭连接
}

// MinioResourcePlugin MinIO资源插件
type MinioResourcePlugin struct{}

func (p *MinioResourcePlugin) Name() string {
	return "minioResource"
}

func (p *MinioResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMinioResource()
}

package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	GRPCServer      GRPCServerConfig      `mapstructure:"grpc_server"`
	Database        DatabaseConfig        `mapstructure:"database"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Log             LogConfig             `mapstructure:"log"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Public          PublicConfig          `mapstructure:"public"`
	Media           MediaConfig           `mapstructure:"media"`
	Cleanup         CleanupConfig         `mapstructure:"cleanup"`
	Admin           AdminConfig           `mapstructure:"admin"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	Etcd            EtcdConfig            `mapstructure:"etcd"`
	Observability   ObservabilityConfig   `mapstructure:"observability"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxMultipartMB 限制 multipart 表单的内存占用
	MaxMultipartMB int64 `mapstructure:"max_multipart_mb"`
}

// GRPCServerConfig gRPC server configuration.
type GRPCServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	BootstrapServers []string          `mapstructure:"bootstrap_servers"`
	ClientID         string            `mapstructure:"client_id"`
	GroupID          string            `mapstructure:"group_id"`
	Enabled          bool              `mapstructure:"enabled"`
	Topics           KafkaTopicsConfig `mapstructure:"topics"`
}

type KafkaTopicsConfig struct {
	AssetCleanup string `mapstructure:"asset_cleanup"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	ExpireTime time.Duration `mapstructure:"expire_time"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Endpoint        string   `mapstructure:"endpoint"`
	AccessKeyID     string   `mapstructure:"access_key_id"`
	AccessKey       string   `mapstructure:"access_key"`
	SecretAccessKey string   `mapstructure:"secret_access_key"`
	SecretKey       string   `mapstructure:"secret_key"`
	UseSSL          bool     `mapstructure:"use_ssl"`
	Region          string   `mapstructure:"region"`
	Buckets         []string `mapstructure:"buckets"`
}

// PublicConfig 对外访问配置
type PublicConfig struct {
	// StorageBase 对象公开访问前缀，形如 https://cdn.example.com
	StorageBase string `mapstructure:"storage_base"`
	// TransformBase 图片处理服务前缀，为空表示存储不支持变换
	TransformBase string `mapstructure:"transform_base"`
}

// MediaConfig 图片处理与上传配置
type MediaConfig struct {
	MaxSizeMB        int64         `mapstructure:"max_size_mb"`
	StoreMaxSizeMB   int64         `mapstructure:"store_max_size_mb"`
	MaxWidth         int           `mapstructure:"max_width"`
	MaxHeight        int           `mapstructure:"max_height"`
	Quality          float64       `mapstructure:"quality"`
	Format           string        `mapstructure:"format"`
	MaxRetries       int           `mapstructure:"max_retries"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`
	ConcurrencyLimit int           `mapstructure:"concurrency_limit"`
	OnTranscodeError string        `mapstructure:"on_transcode_error"`
	OnFileError      string        `mapstructure:"on_file_error"`
	MaxFiles         int           `mapstructure:"max_files"`
	CacheControl     string        `mapstructure:"cache_control"`
	ProductBucket    string        `mapstructure:"product_bucket"`
	CategoryBucket   string        `mapstructure:"category_bucket"`
	ProgressTTL      time.Duration `mapstructure:"progress_ttl"`
}

// CleanupConfig 旧图片清理配置
type CleanupConfig struct {
	// Mode: immediate | queue | kafka
	Mode          string `mapstructure:"mode"`
	Workers       int    `mapstructure:"workers"`
	QueueCapacity int    `mapstructure:"queue_capacity"`
}

// AdminConfig 后台账号配置
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// EtcdConfig etcd client configuration.
type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
}

// ObservabilityConfig profiling configuration.
type ObservabilityConfig struct {
	PyroscopeEnabled bool   `mapstructure:"pyroscope_enabled"`
	PyroscopeAddress string `mapstructure:"pyroscope_address"`
}

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig 获取全局配置
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.client_id", "storefront-service")
	v.SetDefault("kafka.group_id", "storefront-service-group")
	v.SetDefault("kafka.topics.asset_cleanup", "media.assets.cleanup")
	v.SetDefault("media.on_transcode_error", "passthrough")
	v.SetDefault("media.on_file_error", "skip")
	v.SetDefault("cleanup.mode", "immediate")

	// 设置环境变量前缀
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// Default 返回仅包含默认值的配置
func Default() *Config {
	c := &Config{}
	c.normalize()
	return c
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	// 兼容不同的密钥字段
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxMultipartMB <= 0 {
		c.Server.MaxMultipartMB = 64
	}
	if c.GRPCServer.Host == "" {
		c.GRPCServer.Host = "0.0.0.0"
	}
	if c.GRPCServer.Port == 0 {
		c.GRPCServer.Port = 9090
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}

	m := &c.Media
	if m.MaxSizeMB <= 0 {
		m.MaxSizeMB = 10
	}
	if m.StoreMaxSizeMB <= 0 {
		m.StoreMaxSizeMB = 50
	}
	if m.MaxWidth <= 0 {
		m.MaxWidth = 1200
	}
	if m.MaxHeight <= 0 {
		m.MaxHeight = 1200
	}
	if m.Quality <= 0 || m.Quality > 1 {
		m.Quality = 0.9
	}
	m.Format = strings.ToLower(strings.TrimSpace(m.Format))
	if m.MaxRetries <= 0 {
		m.MaxRetries = 3
	}
	if m.BackoffBase <= 0 {
		m.BackoffBase = time.Second
	}
	if m.ConcurrencyLimit <= 0 {
		m.ConcurrencyLimit = 3
	}
	if m.OnTranscodeError == "" {
		m.OnTranscodeError = "passthrough"
	}
	if m.OnFileError == "" {
		m.OnFileError = "skip"
	}
	if m.MaxFiles <= 0 {
		m.MaxFiles = 5
	}
	if m.CacheControl == "" {
		m.CacheControl = "max-age=31536000"
	}
	if m.ProductBucket == "" {
		m.ProductBucket = "product-images"
	}
	if m.CategoryBucket == "" {
		m.CategoryBucket = "category-images"
	}
	if m.ProgressTTL <= 0 {
		m.ProgressTTL = 30 * time.Minute
	}
	if len(c.Minio.Buckets) == 0 {
		c.Minio.Buckets = []string{m.ProductBucket, m.CategoryBucket}
	}

	if c.Cleanup.Mode == "" {
		c.Cleanup.Mode = "immediate"
	}
	if c.Cleanup.Workers <= 0 {
		c.Cleanup.Workers = 2
	}
	if c.Cleanup.QueueCapacity <= 0 {
		c.Cleanup.QueueCapacity = c.Cleanup.Workers * 50
	}

	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "storefront-service"
	}
	if c.JWT.ExpireTime <= 0 {
		c.JWT.ExpireTime = 12 * time.Hour
	}

	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "storefront-service"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}
	if c.Etcd.DialTimeout <= 0 {
		c.Etcd.DialTimeout = 5 * time.Second
	}
	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "storefront-service"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "storefront-service-group"
	}
	if c.Kafka.Topics.AssetCleanup == "" {
		c.Kafka.Topics.AssetCleanup = "media.assets.cleanup"
	}
}

// MaxSizeBytes 上传前校验的软上限
func (m MediaConfig) MaxSizeBytes() int64 {
	return m.MaxSizeMB * 1024 * 1024
}

// StoreMaxSizeBytes 存储端的硬上限
func (m MediaConfig) StoreMaxSizeBytes() int64 {
	return m.StoreMaxSizeMB * 1024 * 1024
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

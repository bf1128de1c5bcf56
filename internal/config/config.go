package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	RabbitMQ  RabbitMQConfig
	Upstream  UpstreamConfig
	Thumbnail ThumbnailConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8002"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"streamdir"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"streamdir"`
	DBName   string `envconfig:"POSTGRES_DB" default:"streamdir"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"thumbnails"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"streamdir"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"streamdir"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

// UpstreamConfig points at the external collaborators of the directory.
// Every call carries Timeout as a hard request deadline: a hung collaborator
// surfaces as an upstream failure instead of blocking the serving goroutine.
type UpstreamConfig struct {
	KeyMatchBaseURL    string        `envconfig:"KEYMATCH_BASE_URL" default:"http://localhost:8100"`
	AuthBaseURL        string        `envconfig:"AUTH_BASE_URL" default:"http://localhost:8100"`
	RegionMatchBaseURL string        `envconfig:"REGION_MATCH_BASE_URL" default:"http://localhost:8004"`
	Timeout            time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"5s"`
}

type ThumbnailConfig struct {
	Dir            string        `envconfig:"THUMBNAIL_DIR" default:"/tmp/streamdir/tnails"`
	TTL            time.Duration `envconfig:"THUMBNAIL_TTL" default:"120s"`
	Width          int           `envconfig:"THUMBNAIL_WIDTH" default:"300"`
	CaptureQuality string        `envconfig:"THUMBNAIL_CAPTURE_QUALITY" default:"subsd"`
	CaptureTimeout time.Duration `envconfig:"THUMBNAIL_CAPTURE_TIMEOUT" default:"10s"`
}

type CacheConfig struct {
	StreamTTL time.Duration `envconfig:"CACHE_STREAM_TTL" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"tender-docs/internal/core/domain"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env       Env
	Log       LogConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Minio     MinioConfig
	S3        S3Config
	Retry     RetryConfig
	Upload    UploadConfig
	Reconcile ReconcileConfig
	NATS      NATSConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

// IsProd reports whether the app runs in production
func (e Env) IsProd() bool {
	return e.Env == "prod"
}

type LogConfig struct {
	Level     string `envconfig:"LOG_LEVEL" default:""`
	SentryDSN string `envconfig:"SENTRY_DSN" default:""`
}

type ServerConfig struct {
	Host string `envconfig:"SERVER_HOST" default:"localhost"`
	Port string `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// DSN returns the lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

const (
	StorageDriverMinio = "minio"
	StorageDriverS3    = "s3"
)

type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"minio"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME" default:"documents"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region    string `envconfig:"S3_REGION" default:"eu-south-1"`
	Bucket    string `envconfig:"S3_BUCKET" default:"documents"`
	AccessKey string `envconfig:"S3_ACCESS_KEY"`
	SecretKey string `envconfig:"S3_SECRET_KEY"`
	// Endpoint is optional, for S3 compatible services
	Endpoint string `envconfig:"S3_ENDPOINT"`
}

type RetryConfig struct {
	MaxAttempts     int           `envconfig:"STORAGE_RETRY_MAX_ATTEMPTS" default:"3"`
	InitialInterval time.Duration `envconfig:"STORAGE_RETRY_INITIAL_INTERVAL" default:"200ms"`
	MaxInterval     time.Duration `envconfig:"STORAGE_RETRY_MAX_INTERVAL" default:"2s"`
}

type UploadConfig struct {
	MaxFileSizeBytes       int64    `envconfig:"UPLOAD_MAX_FILE_SIZE_BYTES" default:"52428800"` // 50MB
	AllowedExtensions      []string `envconfig:"UPLOAD_ALLOWED_EXTENSIONS" default:".pdf,.p7m,.doc,.docx,.xls,.xlsx,.odt,.ods,.jpg,.jpeg,.png,.zip"`
	AllowedMimeTypes       []string `envconfig:"UPLOAD_ALLOWED_MIME_TYPES" default:""`
	MaxFilesPerUpload      int      `envconfig:"UPLOAD_MAX_FILES_PER_UPLOAD" default:"10"`
	MaxTotalBatchSizeBytes int64    `envconfig:"UPLOAD_MAX_TOTAL_BATCH_SIZE_BYTES" default:"209715200"` // 200MB
}

// Policy builds the immutable upload policy
func (c UploadConfig) Policy() domain.UploadPolicy {
	return domain.NewUploadPolicy(
		c.MaxFileSizeBytes,
		c.MaxFilesPerUpload,
		c.MaxTotalBatchSizeBytes,
		c.AllowedExtensions,
		c.AllowedMimeTypes,
	)
}

type ReconcileConfig struct {
	Threshold time.Duration `envconfig:"RECONCILE_THRESHOLD" default:"24h"`
	// Schedule is a cron spec with seconds; empty disables the in-process schedule
	Schedule  string `envconfig:"RECONCILE_SCHEDULE" default:"0 0 3 * * *"`
	BatchSize int    `envconfig:"RECONCILE_BATCH_SIZE" default:"500"`
}

type NATSConfig struct {
	URL            string `envconfig:"NATS_URL"`
	StreamName     string `envconfig:"NATS_STREAM_NAME" default:"DOCUMENTS"`
	ConsumerName   string `envconfig:"NATS_CONSUMER_NAME" default:"reconciler"`
	TriggerSubject string `envconfig:"NATS_TRIGGER_SUBJECT" default:"documents.reconcile.trigger"`
	ReportSubject  string `envconfig:"NATS_REPORT_SUBJECT" default:"documents.reconcile.report"`
	// AckWait is extended while a message is being handled
	AckWait    time.Duration `envconfig:"NATS_ACK_WAIT" default:"30s"`
	MaxDeliver int           `envconfig:"NATS_MAX_DELIVER" default:"5"`
}

func Load() (*Config, error) {
	var cfg Config

	// .env is optional, real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDatabase loads only the database settings, for tools that need no other service
func LoadDatabase() (*DatabaseConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg DatabaseConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverMinio:
		if c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			return errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio driver")
		}
	case StorageDriverS3:
		if c.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Upload.MaxFileSizeBytes <= 0 {
		return errors.New("UPLOAD_MAX_FILE_SIZE_BYTES must be positive")
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return errors.New("UPLOAD_ALLOWED_EXTENSIONS must not be empty")
	}
	if c.Reconcile.Threshold <= 0 {
		return errors.New("RECONCILE_THRESHOLD must be positive")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"NODE_ENV"`
	AppEnv      string `envconfig:"APP_ENV"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	UploadMaxMB int    `envconfig:"UPLOAD_MAX_MB" default:"10"`

	JWT       JWTConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	Secret    string        `envconfig:"JWT_SECRET" required:"true"`
	ExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"168h"`
	Issuer    string        `envconfig:"JWT_ISSUER" default:"imagehost"`
}

type StorageConfig struct {
	Driver    string `envconfig:"STORAGE_DRIVER" default:"s3"`
	Bucket    string `envconfig:"STORAGE_BUCKET" required:"true"`
	PublicURL string `envconfig:"STORAGE_PUBLIC_URL"`

	GCSProjectID string `envconfig:"GCS_PROJECT_ID"`

	S3Endpoint        string `envconfig:"S3_ENDPOINT"`
	S3Region          string `envconfig:"S3_REGION" default:"auto"`
	S3AccessKeyID     string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"S3_SECRET_ACCESS_KEY"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type RedisConfig struct {
	URL           string        `envconfig:"REDIS_URL"`
	ImageCacheTTL time.Duration `envconfig:"IMAGE_CACHE_TTL" default:"10m"`
}

type RateLimitConfig struct {
	Upload    int           `envconfig:"UPLOAD_RATE_LIMIT" default:"20"`
	Transform int           `envconfig:"TRANSFORM_RATE_LIMIT" default:"10"`
	Window    time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.Environment == "" {
		cfg.Environment = cfg.AppEnv
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "gcs", "s3", "minio", "memory":
	default:
		return fmt.Errorf("config: unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.UploadMaxMB <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_MB must be positive")
	}

	if c.RateLimit.Upload <= 0 || c.RateLimit.Transform <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: rate limits must be positive")
	}

	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) BodyLimit() int {
	return c.UploadMaxMB * 1024 * 1024
}

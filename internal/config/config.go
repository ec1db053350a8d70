package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds anomaly-service configuration.
type Config struct {
	AppEnv   string // APP_ENV
	AppHost  string // APP_HOST
	HTTPPort string // APP_PORT or HTTP_PORT
	LogLevel string // LOG_LEVEL

	// PostgreSQL
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	// Object store (S3)
	S3 struct {
		Region          string
		Bucket          string
		Endpoint        string // optional, for S3-compatible stores
		AccessKey       string
		SecretKey       string
		VideoPrefix     string // e.g. clips/
		ThumbnailPrefix string // e.g. thumbnails/
		PresignMinutes  int    // presigned URL expiry
		ProbeTimeout    int    // seconds, bound on metadata/stream calls
		FallbackSize    int64  // bytes, used when size cannot be measured
	}

	// SMTP notification transport
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}

	// Default per-user quota in bytes, granted at signup.
	QuotaDefaultTotal int64
}

// Load loads config from environment (.env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	presignMin, _ := strconv.Atoi(getEnv("S3_PRESIGN_MINUTES", "10"))
	probeTO, _ := strconv.Atoi(getEnv("S3_PROBE_TIMEOUT_SECONDS", "5"))
	fallbackSize, _ := strconv.ParseInt(getEnv("S3_FALLBACK_SIZE_BYTES", strconv.FormatInt(5*1024*1024, 10)), 10, 64)
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	quotaTotal, _ := strconv.ParseInt(getEnv("QUOTA_DEFAULT_TOTAL_BYTES", strconv.FormatInt(2*1024*1024*1024, 10)), 10, 64)

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		AppHost:           getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:          firstEnv("APP_PORT", "HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		QuotaDefaultTotal: quotaTotal,
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "anomaly_service")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.S3.Region = getEnv("AWS_REGION", "ap-northeast-2")
	cfg.S3.Bucket = getEnv("S3_BUCKET", "")
	cfg.S3.Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3.AccessKey = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.S3.SecretKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.S3.VideoPrefix = getEnv("S3_VIDEO_PREFIX", "clips/")
	cfg.S3.ThumbnailPrefix = getEnv("S3_THUMBNAIL_PREFIX", "thumbnails/")
	cfg.S3.PresignMinutes = presignMin
	cfg.S3.ProbeTimeout = probeTO
	cfg.S3.FallbackSize = fallbackSize

	cfg.SMTP.Host = getEnv("SMTP_HOST", "")
	cfg.SMTP.Port = smtpPort
	cfg.SMTP.Username = getEnv("SMTP_USERNAME", "")
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.SMTP.From = getEnv("APP_EMAIL", cfg.SMTP.Username)

	return cfg, nil
}

// Validate checks required fields and production safety.
func (c *Config) Validate() error {
	if c.DB.Host == "" {
		return errors.New("config: DB_HOST is required")
	}
	if c.DB.User == "" {
		return errors.New("config: DB_USER is required")
	}
	if c.DB.Database == "" {
		return errors.New("config: DB_DATABASE is required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	if c.S3.Bucket == "" {
		return errors.New("config: S3_BUCKET is required")
	}
	if c.S3.PresignMinutes <= 0 {
		return errors.New("config: S3_PRESIGN_MINUTES must be positive")
	}
	return nil
}

// DSN returns PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

// DatabaseURL returns postgres URL for golang-migrate.
func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

// Addr returns listen address for HTTP server.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	keys := keysAndDef[:len(keysAndDef)-1]
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"go-doc-library/internal/validation"
)

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	ShutdownTimeout    time.Duration
	RequestTimeout     time.Duration
	ContentTimeout     time.Duration
	ContentIdleTimeout time.Duration

	LogLevel  string
	LogFormat string

	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	JWTSecret   string
	CORSOrigins []string

	StorageBackend     string
	UploadDir          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3Bucket        string
	AWSRegion          string
	AWSS3Endpoint      string
	S3PresignTTL       time.Duration
	S3OperationTimeout time.Duration

	MaxFileSizeMB     int64
	AllowedExtensions []string
	MaxImageSizeMB    int64
	PurgeOnDelete     bool
	MetricsEnabled    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout:    getDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ContentTimeout:     getDuration("CONTENT_TIMEOUT", 10*time.Minute),
		ContentIdleTimeout: getDuration("CONTENT_IDLE_TIMEOUT", time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "pretty"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:         getInt("DB_MAX_CONNS", 10),
		DBMinConns:         getInt("DB_MIN_CONNS", 1),
		JWTSecret:          strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "*")),
		StorageBackend:     getEnv("STORAGE_BACKEND", "local"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		AWSAccessKeyID:     strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		AWSSecretAccessKey: strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY")),
		AWSS3Bucket:        strings.TrimSpace(os.Getenv("AWS_S3_BUCKET")),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Endpoint:      strings.TrimSpace(os.Getenv("AWS_S3_ENDPOINT")),
		S3PresignTTL:       getDuration("S3_PRESIGN_TTL", time.Hour),
		S3OperationTimeout: getDuration("S3_OPERATION_TIMEOUT", 30*time.Second),
		MaxFileSizeMB:      getInt64("MAX_FILE_SIZE_MB", 10),
		AllowedExtensions:  validation.NormalizeExtensions(splitCSV(getEnv("ALLOWED_EXTENSIONS", "pdf"))),
		MaxImageSizeMB:     getInt64("MAX_IMAGE_SIZE_MB", 5),
		PurgeOnDelete:      getBool("PURGE_ON_DELETE", false),
		MetricsEnabled:     getBool("METRICS_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings needed to start. Object store credentials are not
// checked here; a missing value surfaces when the backend is first selected.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_MB must be positive")
	}

	if c.MaxImageSizeMB <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE_MB must be positive")
	}

	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("ALLOWED_EXTENSIONS cannot be empty")
	}

	if c.DatabaseURL != "" && (c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns) {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS (%d)", c.DBMaxConns)
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}

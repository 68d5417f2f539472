package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Metadata backends.
const (
	MetadataJSON     = "json"
	MetadataMemory   = "memory"
	MetadataPostgres = "postgres"
)

// Blob backends.
const (
	BlobDisk  = "disk"
	BlobMinIO = "minio"
)

const defaultMaxUploadBytes = 100 << 20 // 100 MiB

// Config aggregates runtime configuration for the file sharing API.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host                string
	Port                int
	PublicURL           string
	TrustForwardedProto bool
	ReadHeaderTimeout   time.Duration
	IdleTimeout         time.Duration
	MaxUploadBytes      int64
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects where records and blobs live.
type StorageConfig struct {
	MetadataBackend string
	MetadataPath    string
	BlobBackend     string
	UploadDir       string
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:                getString("FILESHARE_HOST", "0.0.0.0"),
			Port:                getInt("PORT", 3000),
			PublicURL:           strings.TrimRight(getString("FILESHARE_PUBLIC_URL", ""), "/"),
			TrustForwardedProto: getBool("FILESHARE_TRUST_FORWARDED_PROTO", false),
			ReadHeaderTimeout:   getDuration("FILESHARE_READ_HEADER_TIMEOUT", 10*time.Second),
			IdleTimeout:         getDuration("FILESHARE_IDLE_TIMEOUT", 60*time.Second),
			MaxUploadBytes:      getInt64("FILESHARE_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		},
		Storage: StorageConfig{
			MetadataBackend: strings.ToLower(getString("FILESHARE_METADATA_BACKEND", MetadataJSON)),
			MetadataPath:    getString("FILESHARE_METADATA_PATH", "./data/files.json"),
			BlobBackend:     strings.ToLower(getString("FILESHARE_BLOB_BACKEND", BlobDisk)),
			UploadDir:       getString("FILESHARE_UPLOAD_DIR", "./uploads"),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "fileshare"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "fileshare"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "fileshare"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "fileshare"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILESHARE_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.MetadataBackend {
	case MetadataJSON, MetadataMemory, MetadataPostgres:
	default:
		return fmt.Errorf("unknown metadata backend %q", c.Storage.MetadataBackend)
	}
	switch c.Storage.BlobBackend {
	case BlobDisk, BlobMinIO:
	default:
		return fmt.Errorf("unknown blob backend %q", c.Storage.BlobBackend)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

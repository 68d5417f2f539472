package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Address())
	assert.Equal(t, int64(100<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, MetadataJSON, cfg.Storage.MetadataBackend)
	assert.Equal(t, BlobDisk, cfg.Storage.BlobBackend)
	assert.Equal(t, "/metrics", cfg.Metrics.PrometheusPath)
	assert.False(t, cfg.Server.TrustForwardedProto)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("FILESHARE_PUBLIC_URL", "https://share.example.com/")
	t.Setenv("FILESHARE_METADATA_BACKEND", "Postgres")
	t.Setenv("FILESHARE_IDLE_TIMEOUT", "2m")
	t.Setenv("MINIO_USE_SSL", "yes")
	t.Setenv("FILESHARE_TRUST_FORWARDED_PROTO", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "https://share.example.com", cfg.Server.PublicURL)
	assert.Equal(t, MetadataPostgres, cfg.Storage.MetadataBackend)
	assert.Equal(t, 2*time.Minute, cfg.Server.IdleTimeout)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.Server.TrustForwardedProto)
}

func TestLoadFallsBackOnUnparsablePort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("FILESHARE_BLOB_BACKEND", "tape")

	_, err := Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "files", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/files?sslmode=disable", p.DSN())
}

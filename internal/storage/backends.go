package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/abduss/fileshare/internal/config"
	"github.com/abduss/fileshare/internal/file"
	"go.uber.org/zap"
)

// OpenMetadataStore builds the record store selected by cfg.Storage.MetadataBackend.
// The returned func releases backend connections and is never nil on success.
func OpenMetadataStore(ctx context.Context, cfg config.Config, log *zap.Logger) (file.Store, func(), error) {
	switch cfg.Storage.MetadataBackend {
	case config.MetadataMemory:
		log.Warn("metadata kept in memory only; records are lost on restart")
		return file.NewMemoryStore(), func() {}, nil
	case config.MetadataPostgres:
		pool, err := NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		repo := file.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	case config.MetadataJSON:
		store, err := file.OpenJSONStore(cfg.Storage.MetadataPath)
		if err != nil {
			if !errors.Is(err, file.ErrCorruptDocument) {
				return nil, nil, err
			}
			// keep serving with an empty store; the next write replaces the document
			log.Warn("metadata document unreadable, starting empty",
				zap.String("path", store.Path()), zap.Error(err))
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown metadata backend %q", cfg.Storage.MetadataBackend)
	}
}

// OpenBlobStore builds the byte store selected by cfg.Storage.BlobBackend. The MinIO
// bucket is created when missing.
func OpenBlobStore(ctx context.Context, cfg config.Config) (file.BlobStore, error) {
	switch cfg.Storage.BlobBackend {
	case config.BlobMinIO:
		client, err := NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		if err := EnsureBucket(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			return nil, err
		}
		return file.NewMinIOStore(client, cfg.MinIO.Bucket), nil
	case config.BlobDisk:
		store, err := file.NewDiskStore(cfg.Storage.UploadDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Storage.BlobBackend)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/abduss/fileshare/internal/config"
	"github.com/abduss/fileshare/internal/file"
	"github.com/abduss/fileshare/internal/logger"
	"github.com/abduss/fileshare/internal/server"
	"github.com/abduss/fileshare/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	zlog, err := logger.Init()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("load config", zap.Error(err))
	}
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.PublicURL == "" {
		zlog.Warn("FILESHARE_PUBLIC_URL not set; share links are built from the request Host header")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.OpenMetadataStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("open metadata store", zap.String("backend", cfg.Storage.MetadataBackend), zap.Error(err))
	}
	defer closeStore()

	blobs, err := storage.OpenBlobStore(ctx, cfg)
	if err != nil {
		zlog.Fatal("open blob store", zap.String("backend", cfg.Storage.BlobBackend), zap.Error(err))
	}

	fileService := file.NewService(store, blobs).WithMaxFileSize(cfg.Server.MaxUploadBytes)

	router := server.NewRouter(server.Dependencies{
		Config:      cfg,
		Store:       store,
		Blobs:       blobs,
		FileService: fileService,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		zlog.Info("file share listening",
			zap.String("addr", cfg.Server.Address()),
			zap.String("metadata_backend", cfg.Storage.MetadataBackend),
			zap.String("blob_backend", cfg.Storage.BlobBackend),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	zlog.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}

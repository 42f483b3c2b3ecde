package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-doc-library/internal/config"
	"go-doc-library/internal/database"
	"go-doc-library/internal/handler"
	"go-doc-library/internal/middleware"
	"go-doc-library/internal/repository"
	"go-doc-library/internal/router"
	"go-doc-library/internal/service"
	"go-doc-library/internal/storage"
	"go-doc-library/internal/validation"
)

type App struct {
	server          *http.Server
	db              *database.DB
	shutdownTimeout time.Duration
}

// New wires the catalog, storage selector and HTTP surface. Without
// DATABASE_URL the catalog is kept in memory and lost on restart.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	var (
		catalog     service.VersionCatalog
		auditStore  service.AuditStore
		db          *database.DB
		healthCheck func(ctx context.Context) error
	)

	if cfg.DatabaseURL != "" {
		slog.Info("connecting to PostgreSQL")
		var err error
		db, err = database.New(ctx, database.PoolConfig{
			URL:      cfg.DatabaseURL,
			MaxConns: int32(cfg.DBMaxConns),
			MinConns: int32(cfg.DBMinConns),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		catalog = repository.NewVersionRepository(db.Pool)
		auditStore = repository.NewAuditRepository(db.Pool)
		healthCheck = db.Health
		slog.Info("database ready")
	} else {
		slog.Warn("DATABASE_URL not set; version catalog and audit trail are in memory and will not survive a restart")
		catalog = repository.NewMemoryVersionRepository()
		auditStore = repository.NewMemoryAuditRepository()
	}

	selector := storage.NewSelector(storage.SelectorConfig{
		Kind:      cfg.StorageBackend,
		LocalRoot: cfg.UploadDir,
		S3: storage.S3Config{
			AccessKeyID:      cfg.AWSAccessKeyID,
			SecretAccessKey:  cfg.AWSSecretAccessKey,
			Bucket:           cfg.AWSS3Bucket,
			Region:           cfg.AWSRegion,
			Endpoint:         cfg.AWSS3Endpoint,
			PresignTTL:       cfg.S3PresignTTL,
			OperationTimeout: cfg.S3OperationTimeout,
		},
	})

	profiles := validation.NewProfiles(
		validation.DocumentProfile(cfg.MaxFileSizeMB*validation.MiB, cfg.AllowedExtensions),
		validation.ImageProfile(cfg.MaxImageSizeMB*validation.MiB),
	)

	versionService := service.NewVersionService(catalog, selector, profiles)
	versionService.SetPurgeOnDelete(cfg.PurgeOnDelete)
	auditService := service.NewAuditService(auditStore)

	tokenValidator, err := service.NewTokenValidator(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}

	appRouter := router.New(
		cfg,
		middleware.NewAuthMiddleware(tokenValidator),
		handler.NewVersionHandler(versionService, auditService),
		handler.NewStorageHandler(versionService),
		handler.NewAuditHandler(auditService),
		handler.NewHealthHandler(healthCheck),
	)

	// Resolve the backend at startup so misconfiguration shows up in the logs.
	// Not fatal: requests keep reporting the error until the config is fixed.
	_, _ = selector.Select(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db, shutdownTimeout: cfg.ShutdownTimeout}, nil
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.db.Close()
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.db.Close()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

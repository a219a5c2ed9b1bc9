package main

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
	_ "time/tzdata"

	"earnly/config"
	"earnly/internal/database"
	"earnly/internal/ledger"
	"earnly/internal/middleware"
	"earnly/internal/router"
	"earnly/pkg/payout"
	"earnly/pkg/storage"

	"github.com/go-redis/redis/v8"
)

func setupLogger(cfg *config.ServerConfig) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(h))
}

func newProofStore(ctx context.Context, cfg *config.Config) (storage.ProofStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
			Folder:    cfg.Storage.Folder,
		})
	case "cloudinary", "":
		if cfg.Cloudinary.CloudName == "" {
			slog.Warn("cloudinary not configured; only text proofs are accepted")
			return nil, nil
		}
		return storage.NewCloudinaryStore(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Storage.Folder)
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func newLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, func(), error) {
	if cfg.RateLimit.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return middleware.NewRedisRateLimiter(client, cfg.Redis.Prefix, cfg.RateLimit.Limit, cfg.RateLimit.Window),
			func() { client.Close() }, nil
	}
	l := middleware.NewInMemoryRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	cctx, cancel := context.WithCancel(ctx)
	go l.Cleanup(cctx, time.Minute)
	return l, cancel, nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(&cfg.Server)
	ctx := context.Background()

	loc, err := cfg.Earning.Location()
	if err != nil {
		return err
	}
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedAdmin(db, &cfg.Seed); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	seeds, err := config.LoadPlanSeeds(cfg.Seed.PlansFile)
	if err != nil {
		slog.Warn("plan seed file not loaded", "path", cfg.Seed.PlansFile, "error", err)
	} else if err := database.SeedPlans(db, seeds); err != nil {
		return err
	}

	l := ledger.New(db, ledger.Options{MaxAttempts: cfg.Earning.MaxLedgerAttempts, Location: loc})
	svc := router.NewServices(cfg, db, l, &payout.StubProvider{})
	if err := svc.Settings.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	proofs, err := newProofStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	defer closeLimiter()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(cfg, svc, proofs, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "port", cfg.Server.Port, "env", cfg.Server.Env, "db", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

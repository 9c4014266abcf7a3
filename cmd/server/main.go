// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/ranked/internal/auth"
	"github.com/jason-s-yu/ranked/internal/cache"
	"github.com/jason-s-yu/ranked/internal/config"
	"github.com/jason-s-yu/ranked/internal/database"
	"github.com/jason-s-yu/ranked/internal/handlers"
	"github.com/jason-s-yu/ranked/internal/ladder"
	"github.com/jason-s-yu/ranked/internal/live"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer store.Close()

	adminKey, err := loadAdminKey(cfg)
	if err != nil {
		logger.Fatalf("admin key: %v", err)
	}

	hub := live.NewHub()

	var opts []ladder.Option
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		feed := cache.NewHistoryFeed(rdb, cfg.HistoryQueue)
		defer feed.Close()
		opts = append(opts, ladder.WithPublisher(feed))
		logger.Infof("Publishing match history to Redis at %s", cfg.RedisAddr)
	}

	processor := ladder.NewProcessor(store, hub, adminKey, logger, opts...)
	srv := handlers.NewServer(store, processor, hub, logger)
	if fi, err := os.Stat(cfg.StaticDir); err == nil && fi.IsDir() {
		srv.Static = http.FileServer(http.Dir(cfg.StaticDir))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", cfg.Addr())
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (database.Store, error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store; ratings are lost on restart")
		return database.NewMemoryStore(), nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	store := database.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("Connected to database")
	return store, nil
}

func loadAdminKey(cfg *config.Config) (*auth.AdminKey, error) {
	if cfg.AdminKeyHash != "" {
		return auth.AdminKeyFromHash(cfg.AdminKeyHash)
	}
	return auth.NewAdminKey(cfg.AdminKey)
}

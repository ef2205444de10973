package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fwdcp/pugchamp/internal/allocator"
	"github.com/fwdcp/pugchamp/internal/config"
	"github.com/fwdcp/pugchamp/internal/draft"
	"github.com/fwdcp/pugchamp/internal/httpapi"
	"github.com/fwdcp/pugchamp/internal/hub"
	"github.com/fwdcp/pugchamp/internal/notify"
	"github.com/fwdcp/pugchamp/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	draftCfg, err := config.LoadDraftConfig(cfg.DraftConfigPath)
	if err != nil {
		logger.Fatal("loading draft config", zap.Error(err))
	}

	db, err := store.Open(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx)

	svc := draft.NewService(ctx, draftCfg, draft.Deps{
		Log:          logger.Named("draft"),
		Rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		Users:        db,
		Games:        db,
		Allocator:    allocator.NewClient(cfg.AllocatorURL, logger.Named("allocator")),
		Notifier:     notify.NewBroadcaster(h, logger.Named("notify")),
		Restrictions: db,
		Sink:         h,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(svc, h, logger.Named("http")),
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return cfg.Build()
}

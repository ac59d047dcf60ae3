package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Cherval/me-my-cal/internal/auth"
	"github.com/Cherval/me-my-cal/internal/cli"
	apphttp "github.com/Cherval/me-my-cal/internal/http"
	"github.com/Cherval/me-my-cal/internal/localstore"
	"github.com/Cherval/me-my-cal/internal/realtime"
	"github.com/Cherval/me-my-cal/internal/services"
	"github.com/Cherval/me-my-cal/internal/store"
)

func main() {
	cfg, logger := cli.Setup()

	repo := cli.OpenRepository(cfg, logger)

	// Change feed is optional; without it sessions simply never refresh
	// on each other's writes.
	var feedClient *realtime.Client
	if cfg.AMQPURL != "" {
		var err error
		feedClient, err = realtime.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Error("Failed to initialize change feed", "error", err)
			os.Exit(1)
		}
		logger.Info("Change feed connected", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("Change feed disabled - no AMQP_URL provided")
	}

	txService := services.NewTransactionService(repo, feedClient)
	defer txService.Close()

	authService := auth.NewService(cfg.JWTSecret, cfg.SessionTTL, repo)

	if err := os.MkdirAll(cfg.DemoDataDir, 0755); err != nil {
		logger.Error("Failed to create demo data directory", "error", err, "dir", cfg.DemoDataDir)
		os.Exit(1)
	}
	demoAdapter := localstore.NewAdapter(localstore.NewKV(cfg.DemoDataDir))

	var feed store.Subscriber
	if feedClient != nil {
		feed = feedClient
	}
	registry := apphttp.NewRegistry(cfg.SessionTTL, authService, txService, feed, demoAdapter)

	srv := apphttp.NewServer(":"+cfg.Port, authService, registry)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

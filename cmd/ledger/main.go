package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/cache"
	"finledger/internal/cli"
	"finledger/internal/dates"
	"finledger/internal/derive"
	"finledger/internal/grpcserver"
	apphttp "finledger/internal/http"
	"finledger/internal/ledger"
	"finledger/internal/log"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), false)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogJSON)

	logger.Info("Starting finledger", log.FieldBackend, cfg.DataBackend, "port", cfg.Port)

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	opts := []ledger.Option{
		ledger.WithStore(store),
		ledger.WithLogger(logger),
	}

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		client, err := amqp.NewClient(connectCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		cancel()
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		amqpClient = client
		defer amqpClient.Close()
		opts = append(opts, ledger.WithPublisher(amqpClient))
		logger.Info("Publishing ledger events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Event publishing disabled - no AMQP_URL provided")
	}

	l, err := ledger.Open(context.Background(), opts...)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		os.Exit(1)
	}

	engine := derive.NewEngine(dates.SystemClock{}, logger.WithComponent(log.ComponentDerive))

	ready := func(ctx context.Context) error {
		if p, ok := store.(pinger); ok {
			return p.Ping(ctx)
		}
		return nil
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReportCacheSize:    cfg.ReportCacheSize,
		ReportCacheTTL:     cfg.ReportCacheTTL,
		Ready:              ready,
	}, l, engine, logger)

	health := grpcserver.New(cfg.GRPCHealthAddr, logger)

	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	cacheManager.Register(srv.ReportCache())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		health.SetServing(false)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		health.Stop()
		cacheManager.Wait()
	})

	cacheManager.Start(ctx, time.Minute)

	go func() {
		logger.Info("Starting gRPC health server", "addr", cfg.GRPCHealthAddr)
		if err := health.Start(); err != nil {
			logger.Error("gRPC health server error", log.FieldError, err)
		}
	}()
	health.SetServing(true)

	logger.Info("Starting HTTP server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finledger/internal/amqp"
	"finledger/internal/cli"
	"finledger/internal/dates"
	"finledger/internal/log"
	"finledger/internal/services"
	"finledger/internal/sheets"
	gsheet "finledger/internal/sheets/google"
	mem "finledger/internal/sheets/memory"
	"finledger/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), false)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogJSON)

	logger.Info("Starting finledger-worker")

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	// Google Sheets export is optional; without it reports go to memory.
	var exporter sheets.ReportExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = mem.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
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
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	exportWorker := worker.NewExportWorker(store, exporter, dates.SystemClock{}, logger)

	// Reminders go back onto the bus when there is one, otherwise to the log.
	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
	}
	scanner := services.NewReminderScanner(dates.SystemClock{}, publisher, logger, cfg.ReminderWindowDays)
	reminders := services.NewReminderProcessor(scanner, store, services.ReminderProcessorConfig{
		Interval: cfg.ReminderInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := reminders.Stop(shutdownCtx); err != nil {
			logger.Warn("Reminder processor stop failed", log.FieldError, err)
		}
	})

	// On startup, export whatever changed while the worker was down
	if err := exportWorker.StartupExport(ctx); err != nil {
		logger.Error("Failed startup export", log.FieldError, err)
		// Don't exit - continue with normal operation
	}

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			err := amqpClient.ConsumeEvents(gctx, exportWorker.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		if err := reminders.Start(gctx); err != nil {
			return err
		}
		reminders.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}

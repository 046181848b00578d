package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"aptcost/internal/amqp"
	"aptcost/internal/cli"
	"aptcost/internal/gsheet"
	"aptcost/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("worker")
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.MirrorSpreadsheetID == "" {
		logger.Error("MIRROR_SPREADSHEET_ID is required for the mirror worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	sheetClient, err := gsheet.New(context.Background(), cfg.MirrorSpreadsheetID, cfg.MirrorSheetName)
	if err != nil {
		logger.Error("Failed to initialize Sheets mirror client", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(sqliteRepo, sheetClient, cfg.MirrorBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		amqpClient.Close()
	})

	// Clear any backlog accumulated while the worker was down.
	if err := mirrorWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup mirror check failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRecordChanges(gctx, func(msg *amqp.RecordChangeMessage) error {
			return mirrorWorker.HandleChangeMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.MirrorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := mirrorWorker.ProcessPendingMirror(gctx); err != nil {
					logger.Error("Periodic mirror pass failed", "error", err)
				}
			}
		}
	})

	logger.Info("Mirror worker started",
		"spreadsheet_id", cfg.MirrorSpreadsheetID,
		"sheet", cfg.MirrorSheetName,
		"interval", cfg.MirrorInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		// Exit right away so a supervisor restarts us; waiting on the
		// signal handler here would block forever with no signal coming.
		logger.Error("Worker stopped with error", "error", err)
		amqpClient.Close()
		sqliteRepo.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Mirror worker stopped gracefully")
}

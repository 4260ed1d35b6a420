package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/export"
	"financas/internal/export/google"
	"financas/internal/export/memory"
	"financas/internal/log"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	cfg := cli.LoadConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appender export.RowAppender
	if cfg.SheetsSpreadsheetID != "" {
		client, err := google.New(ctx, google.Options{
			SpreadsheetID:   cfg.SheetsSpreadsheetID,
			SheetName:       cfg.SheetsSheetName,
			CredentialsJSON: cfg.SheetsCredentialsJSON,
		})
		if err != nil {
			logger.Error("sheets client init failed", log.FieldError, err)
			os.Exit(1)
		}
		appender = client
		logger.Info("exporting to google sheets", "sheet", cfg.SheetsSheetName)
	} else {
		// Without a spreadsheet the worker drains the queue into memory,
		// useful for local runs against a real broker.
		appender = memory.New()
		logger.Info("exporting to memory sink")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("amqp connection failed", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewExportWorker(appender, logger)
	if err := w.Run(ctx, client); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("export worker stopped", log.FieldOperation, log.OpShutdown)
}

package main

import (
	"os"
	"time"

	"painel/internal/amqp"
	"painel/internal/cli"
	"painel/internal/config"
	applog "painel/internal/log"
	"painel/internal/sheets"
	gsheet "painel/internal/sheets/google"
	"painel/internal/sheets/memory"
	"painel/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker, (*config.Config).ValidateWorker)
	logger.Info("Starting painel-worker", applog.FieldOperation, applog.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	var writer sheets.EventWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		writer = memory.New()
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, mirroring to memory")
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	mirror := worker.NewMirror(writer, logger, worker.WithDedupe(1024, cfg.MirrorDedupeTTL, time.Now))
	if err := mirror.Run(ctx, consumer); err != nil {
		logger.Error("Mirror stopped with error", "error", err)
		os.Exit(1)
	}

	stats := mirror.Stats()
	logger.Info("Worker stopped gracefully",
		applog.FieldOperation, applog.OpShutdown,
		"mirrored", stats.Mirrored,
		"skipped", stats.Skipped,
		"failed", stats.Failed)
}

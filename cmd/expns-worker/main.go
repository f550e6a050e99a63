package main

import (
	"os"

	"golang.org/x/sync/errgroup"

	"expns/internal/amqp"
	"expns/internal/cli"
	"expns/internal/log"
	"expns/internal/store/sheets"
	"expns/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting expns-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration invalid", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx := cli.GracefulShutdown(logger)

	sheetsClient, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(sheetsClient, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeTransactionRecorded(gctx, exporter.HandleTransactionRecorded)
		if gctx.Err() != nil {
			// Shutting down; the consumer stopped because we asked it to.
			return nil
		}
		return err
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		exitCode = 1
	}

	if err := amqpClient.Close(); err != nil {
		logger.Warn("AMQP close failed", log.FieldError, err.Error())
	}
	logger.Info("Worker shutdown complete")
	os.Exit(exitCode)
}

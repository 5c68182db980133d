package main

import (
	"context"
	"os"
	"time"

	"gasdash/internal/amqp"
	"gasdash/internal/cli"
	applog "gasdash/internal/log"
	"gasdash/internal/services"
	"gasdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(os.Getenv("LOG_LEVEL")))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentWorker)
	logger.Info("Starting gasdash-worker", applog.FieldOperation, applog.OpStartup)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The worker always reads fresh sheets.
	cfg.CacheTTL = 0
	reader, _, closeReader := cli.InitDeliveryReader(context.Background(), logger, cfg)
	defer closeReader()

	inventory := services.NewInventoryService(repo, reader, nil, logger)
	importWorker := worker.NewImportWorker(inventory, cfg.ImportInterval, logger)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	}
	if amqpClient == nil && cfg.ImportInterval == 0 {
		logger.Warn("Neither AMQP_URL nor IMPORT_INTERVAL is set, only the startup import will run")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if err := importWorker.StartupImport(ctx); err != nil {
		logger.Error("Startup import incomplete", applog.FieldError, err)
	}

	if amqpClient != nil {
		go func() {
			if err := amqpClient.ConsumeSalesImports(ctx, importWorker.HandleSalesImportMessage); err != nil && ctx.Err() == nil {
				logger.Error("Message consumption failed", applog.FieldError, err)
			}
		}()
	}
	go importWorker.Run(ctx)

	cli.WaitForShutdown(ctx, done)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gasdash/internal/amqp"
	"gasdash/internal/cli"
	apphttp "gasdash/internal/http"
	applog "gasdash/internal/log"
	"gasdash/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(os.Getenv("LOG_LEVEL")))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentApp)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	reader, cached, closeReader := cli.InitDeliveryReader(context.Background(), logger, cfg)
	defer closeReader()

	// Without a broker, sales imports run inside the request.
	var publisher services.ImportPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("Sales imports will be queued", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, sales imports run inline")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Services{
		Deliveries: services.NewDeliveryService(reader, logger),
		Attendance: services.NewAttendanceService(repo, logger),
		Pricing:    services.NewPricingService(repo, reader, logger),
		Inventory:  services.NewInventoryService(repo, reader, publisher, logger),
		Ready:      repo.Ping,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if cached != nil {
			st := cached.Stats()
			logger.Info("Delivery cache stats", "hits", st.Hits, "misses", st.Misses, "entries", st.Entries)
		}
	})

	if cached != nil {
		go cached.Run(ctx, time.Minute)
	}

	logger.Info("Starting gasdash server",
		"port", cfg.Port,
		"source", cfg.DeliverySource,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

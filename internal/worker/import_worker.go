package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gasdash/internal/amqp"
	"gasdash/internal/core"
	applog "gasdash/internal/log"
	"gasdash/internal/services"
)

// SalesImporter runs one sales import for a vehicle.
type SalesImporter interface {
	ImportSales(ctx context.Context, vehicle core.Vehicle) (services.ImportResult, error)
}

// ImportWorker turns queued import requests into stored sales.
type ImportWorker struct {
	importer SalesImporter
	interval time.Duration
	logger   *applog.Logger
}

// NewImportWorker builds a worker. A zero interval disables periodic imports.
func NewImportWorker(importer SalesImporter, interval time.Duration, logger *applog.Logger) *ImportWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ImportWorker{
		importer: importer,
		interval: interval,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleSalesImportMessage processes a single sales import message from AMQP.
func (w *ImportWorker) HandleSalesImportMessage(ctx context.Context, msg *amqp.SalesImportMessage) error {
	w.logger.InfoContext(ctx, "Processing sales import message",
		applog.FieldMessageID, msg.ID,
		applog.FieldVehicle, msg.Vehicle.String(),
		"requested_at", msg.RequestedAt.Format(time.RFC3339))

	res, err := w.importer.ImportSales(ctx, msg.Vehicle)
	if err != nil {
		return fmt.Errorf("import %s sales: %w", msg.Vehicle, err)
	}

	w.logger.InfoContext(ctx, "Sales import completed",
		applog.FieldMessageID, msg.ID,
		applog.FieldVehicle, msg.Vehicle.String(),
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"undated", res.Undated)
	return nil
}

// StartupImport imports every vehicle once, so sales delivered while the
// worker was down are not missed. Failures are logged and counted.
func (w *ImportWorker) StartupImport(ctx context.Context) error {
	var errs []error
	inserted := 0
	for _, v := range core.Vehicles() {
		res, err := w.importer.ImportSales(ctx, v)
		if err != nil {
			w.logger.ErrorContext(ctx, "Startup import failed", applog.FieldVehicle, v.String(), applog.FieldError, err)
			errs = append(errs, fmt.Errorf("%s: %w", v, err))
			continue
		}
		inserted += res.Inserted
	}

	w.logger.InfoContext(ctx, "Startup import completed",
		"vehicles", len(core.Vehicles()),
		"inserted", inserted,
		"errors", len(errs))
	return errors.Join(errs...)
}

// Run repeats StartupImport every interval until ctx is done.
func (w *ImportWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.StartupImport(ctx); err != nil {
				w.logger.WarnContext(ctx, "Periodic import finished with errors", applog.FieldError, err)
			}
		}
	}
}

package services

import (
	"context"
	"fmt"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
	"gasdash/internal/report"
	"gasdash/internal/sheets"
)

// Dashboard is everything one delivery view shows. Records, Report and
// Totals are computed from the same filtered slice.
type Dashboard struct {
	Vehicle core.Vehicle       `json:"vehicle"`
	Records []core.Delivery    `json:"records"`
	Report  report.Report      `json:"report"`
	Totals  report.Totals      `json:"totals"`
	Options core.FilterOptions `json:"options"`
	Empty   bool               `json:"empty"`
}

// DeliveryService loads delivery sheets and builds period reports.
type DeliveryService struct {
	reader sheets.DeliveryReader
	logger *applog.Logger
}

func NewDeliveryService(reader sheets.DeliveryReader, logger *applog.Logger) *DeliveryService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DeliveryService{reader: reader, logger: logger.WithComponent(applog.ComponentDelivery)}
}

// Deliveries loads every row of a vehicle's sheets.
func (s *DeliveryService) Deliveries(ctx context.Context, vehicle core.Vehicle) ([]core.Delivery, error) {
	if !vehicle.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(vehicle))
	}
	records, err := s.reader.ReadDeliveries(ctx, vehicle)
	if err != nil {
		return nil, fmt.Errorf("load %s deliveries: %w", vehicle, err)
	}
	return records, nil
}

// invalidator is implemented by readers that keep rows between calls.
type invalidator interface {
	Invalidate(vehicle core.Vehicle)
}

// Refresh drops any rows held for vehicle and reloads them from the
// source, returning how many were read.
func (s *DeliveryService) Refresh(ctx context.Context, vehicle core.Vehicle) (int, error) {
	if !vehicle.IsValid() {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(vehicle))
	}
	if inv, ok := s.reader.(invalidator); ok {
		inv.Invalidate(vehicle)
	}
	records, err := s.Deliveries(ctx, vehicle)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Deliveries refreshed",
		applog.FieldVehicle, vehicle.String(),
		applog.FieldRecords, len(records))
	return len(records), nil
}

// Dashboard filters the vehicle's deliveries once and aggregates the
// result by g. An invalid granularity fails before anything is loaded.
func (s *DeliveryService) Dashboard(ctx context.Context, vehicle core.Vehicle, filter core.DeliveryFilter, g report.Granularity) (Dashboard, error) {
	if err := g.Validate(); err != nil {
		return Dashboard{}, err
	}
	all, err := s.Deliveries(ctx, vehicle)
	if err != nil {
		return Dashboard{}, err
	}

	filtered := filter.Apply(all)
	rep, err := report.Aggregate(filtered, g)
	if err != nil {
		return Dashboard{}, err
	}
	if rep.Dropped > 0 {
		s.logger.WarnContext(ctx, "Deliveries without a valid date were left out of the report",
			applog.NewFields().WithReport(vehicle.String(), g.String(), len(filtered), len(rep.Buckets), rep.Dropped).ToSlice()...)
	}

	return Dashboard{
		Vehicle: vehicle,
		Records: filtered,
		Report:  rep,
		Totals:  report.Summarize(filtered),
		Options: core.Options(all),
		Empty:   len(filtered) == 0,
	}, nil
}

// Options lists the values each filter can take for a vehicle.
func (s *DeliveryService) Options(ctx context.Context, vehicle core.Vehicle) (core.FilterOptions, error) {
	all, err := s.Deliveries(ctx, vehicle)
	if err != nil {
		return core.FilterOptions{}, err
	}
	return core.Options(all), nil
}

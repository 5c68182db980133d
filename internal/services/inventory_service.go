package services

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
	"gasdash/internal/report"
	"gasdash/internal/sheets"
)

// salesNamespace scopes the source_ref of imported sales.
var salesNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("gasdash/sales"))

// InventoryStore persists products, stock levels and sales.
type InventoryStore interface {
	EnsureProduct(ctx context.Context, name string) (core.Product, error)
	ListProducts(ctx context.Context) ([]core.Product, error)
	SetInventory(ctx context.Context, product string, quantity int64) (core.InventoryLevel, error)
	ListInventory(ctx context.Context) ([]core.InventoryLevel, error)
	InsertSales(ctx context.Context, sales []core.Sale) (int, error)
	Remaining(ctx context.Context, product string) (int64, error)
}

// ImportPublisher queues a sales import for asynchronous processing.
type ImportPublisher interface {
	PublishSalesImport(ctx context.Context, vehicle core.Vehicle) (string, error)
}

// ImportResult describes one sales import run.
type ImportResult struct {
	Vehicle  core.Vehicle `json:"vehicle"`
	Inserted int          `json:"inserted"`
	Skipped  int          `json:"skipped"`
	Undated  int          `json:"undated"`
}

// ImportRequest is returned by RequestSalesImport. MessageID is set when
// the import was queued; Result when it ran inline.
type ImportRequest struct {
	Queued    bool          `json:"queued"`
	MessageID string        `json:"message_id,omitempty"`
	Result    *ImportResult `json:"result,omitempty"`
}

type InventoryService struct {
	store     InventoryStore
	reader    sheets.DeliveryReader
	publisher ImportPublisher
	logger    *applog.Logger
}

// NewInventoryService wires the service. publisher may be nil, in which
// case imports always run inline.
func NewInventoryService(store InventoryStore, reader sheets.DeliveryReader, publisher ImportPublisher, logger *applog.Logger) *InventoryService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &InventoryService{
		store:     store,
		reader:    reader,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentInventory),
	}
}

func (s *InventoryService) AddProduct(ctx context.Context, name string) (core.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Product{}, core.ErrEmptyName
	}
	return s.store.EnsureProduct(ctx, name)
}

func (s *InventoryService) Products(ctx context.Context) ([]core.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *InventoryService) SetInventory(ctx context.Context, product string, quantity int64) (core.InventoryLevel, error) {
	if quantity < 0 {
		return core.InventoryLevel{}, core.ErrNegativeAmount
	}
	level, err := s.store.SetInventory(ctx, strings.TrimSpace(product), quantity)
	if err != nil {
		return core.InventoryLevel{}, err
	}
	s.logger.InfoContext(ctx, "Inventory updated", applog.FieldProduct, level.ProductName, "quantity", quantity)
	return level, nil
}

func (s *InventoryService) Inventory(ctx context.Context) ([]core.InventoryLevel, error) {
	return s.store.ListInventory(ctx)
}

func (s *InventoryService) Remaining(ctx context.Context, product string) (int64, error) {
	return s.store.Remaining(ctx, strings.TrimSpace(product))
}

// ImportSales turns the vehicle's delivery rows into sales of known
// products. Each row maps to a stable source_ref, so importing the same
// sheet again inserts nothing new.
func (s *InventoryService) ImportSales(ctx context.Context, vehicle core.Vehicle) (ImportResult, error) {
	if !vehicle.IsValid() {
		return ImportResult{}, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(vehicle))
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	ids := make(map[string]int64, len(products))
	for _, p := range products {
		ids[p.Name] = p.ID
	}
	records, err := s.reader.ReadDeliveries(ctx, vehicle)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load %s deliveries: %w", vehicle, err)
	}

	res := ImportResult{Vehicle: vehicle}
	sales := make([]core.Sale, 0, len(records))
	occurrences := map[string]int{}
	for _, r := range records {
		id, ok := ids[strings.TrimSpace(r.ProductType)]
		if !ok {
			res.Skipped++
			continue
		}
		date, err := r.CalendarDate()
		if err != nil {
			res.Undated++
			continue
		}
		sales = append(sales, core.Sale{
			ProductID: id,
			Quantity:  r.Quantity.IntPart(),
			Date:      date,
			Vehicle:   vehicle,
			SourceRef: saleRef(vehicle, r, date, occurrences),
		})
	}

	res.Inserted, err = s.store.InsertSales(ctx, sales)
	if err != nil {
		return ImportResult{}, err
	}
	s.logger.InfoContext(ctx, "Sales imported",
		applog.FieldOperation, applog.OpImport,
		applog.FieldVehicle, vehicle.String(),
		applog.FieldRecords, len(records),
		"inserted", res.Inserted,
		"skipped", res.Skipped,
		"undated", res.Undated)
	return res, nil
}

// RequestSalesImport queues an import when a publisher is configured and
// otherwise runs it immediately.
func (s *InventoryService) RequestSalesImport(ctx context.Context, vehicle core.Vehicle) (ImportRequest, error) {
	if !vehicle.IsValid() {
		return ImportRequest{}, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(vehicle))
	}
	if s.publisher == nil {
		res, err := s.ImportSales(ctx, vehicle)
		if err != nil {
			return ImportRequest{}, err
		}
		return ImportRequest{Result: &res}, nil
	}
	id, err := s.publisher.PublishSalesImport(ctx, vehicle)
	if err != nil {
		return ImportRequest{}, fmt.Errorf("queue sales import: %w", err)
	}
	s.logger.InfoContext(ctx, "Sales import queued", applog.FieldVehicle, vehicle.String(), applog.FieldMessageID, id)
	return ImportRequest{Queued: true, MessageID: id}, nil
}

// ProductSummary reports quantities and returned shells per product and period.
func (s *InventoryService) ProductSummary(ctx context.Context, vehicle core.Vehicle, g report.Granularity) (report.ProductReport, error) {
	if err := g.Validate(); err != nil {
		return report.ProductReport{}, err
	}
	if !vehicle.IsValid() {
		return report.ProductReport{}, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(vehicle))
	}
	records, err := s.reader.ReadDeliveries(ctx, vehicle)
	if err != nil {
		return report.ProductReport{}, fmt.Errorf("load %s deliveries: %w", vehicle, err)
	}
	return report.AggregateByProduct(records, g)
}

// saleRef derives the source_ref of a delivery row. Identical rows are told
// apart by how many times the same key was already seen in this import.
func saleRef(vehicle core.Vehicle, r core.Delivery, date civil.Date, occurrences map[string]int) string {
	key := strings.Join([]string{
		vehicle.String(),
		date.String(),
		r.CustomerCode,
		r.ProductType,
		r.CylinderType,
		r.Quantity.String(),
		r.Amount.String(),
		r.Driver1,
		r.Driver2,
	}, "|")
	n := occurrences[key]
	occurrences[key] = n + 1
	return uuid.NewSHA1(salesNamespace, []byte(fmt.Sprintf("%s#%d", key, n))).String()
}

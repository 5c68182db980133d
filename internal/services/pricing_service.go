package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
	"gasdash/internal/sheets"
	"gasdash/internal/storage"
)

// PriceStore persists customers and their agreed prices.
type PriceStore interface {
	EnsureCustomers(ctx context.Context, names []string) (int, error)
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	UpsertPrice(ctx context.Context, customer, product string, price decimal.Decimal) (core.Price, error)
	ListPrices(ctx context.Context, f storage.PriceFilter) ([]core.Price, error)
}

type PricingService struct {
	store  PriceStore
	reader sheets.DeliveryReader
	logger *applog.Logger
}

func NewPricingService(store PriceStore, reader sheets.DeliveryReader, logger *applog.Logger) *PricingService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &PricingService{store: store, reader: reader, logger: logger.WithComponent(applog.ComponentPricing)}
}

// SyncCustomers registers every customer code found in both delivery
// sheets and returns how many were new.
func (s *PricingService) SyncCustomers(ctx context.Context) (int, error) {
	seen := map[string]struct{}{}
	var names []string
	for _, v := range core.Vehicles() {
		records, err := s.reader.ReadDeliveries(ctx, v)
		if err != nil {
			return 0, fmt.Errorf("load %s deliveries: %w", v, err)
		}
		for _, r := range records {
			code := strings.TrimSpace(r.CustomerCode)
			if code == "" {
				continue
			}
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			names = append(names, code)
		}
	}

	added, err := s.store.EnsureCustomers(ctx, names)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "Customers synced",
		applog.FieldOperation, applog.OpImport,
		applog.FieldRecords, len(names),
		"added", added)
	return added, nil
}

func (s *PricingService) SetPrice(ctx context.Context, customer, product string, price decimal.Decimal) (core.Price, error) {
	customer, product = strings.TrimSpace(customer), strings.TrimSpace(product)
	if customer == "" || product == "" {
		return core.Price{}, core.ErrEmptyName
	}
	if price.IsNegative() {
		return core.Price{}, core.ErrNegativeAmount
	}
	p, err := s.store.UpsertPrice(ctx, customer, product, price)
	if err != nil {
		return core.Price{}, err
	}
	s.logger.InfoContext(ctx, "Price updated",
		applog.FieldCustomer, customer,
		applog.FieldProduct, product,
		"price", price.String())
	return p, nil
}

func (s *PricingService) Prices(ctx context.Context, f storage.PriceFilter) ([]core.Price, error) {
	return s.store.ListPrices(ctx, f)
}

func (s *PricingService) Customers(ctx context.Context) ([]core.Customer, error) {
	return s.store.ListCustomers(ctx)
}

// Package memory serves deliveries from in-process slices or local CSV
// fixtures. It backs development setups and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gasdash/internal/core"
	ports "gasdash/internal/sheets"
)

type Store struct {
	mu    sync.RWMutex
	items map[core.Vehicle][]core.Delivery
}

var _ ports.DeliveryReader = (*Store)(nil)

func New() *Store {
	return &Store{items: map[core.Vehicle][]core.Delivery{}}
}

// NewFromFiles loads <dir>/moto.csv and <dir>/truck.csv. Missing files
// leave that vehicle empty.
func NewFromFiles(dir string) (*Store, error) {
	s := New()
	for _, v := range core.Vehicles() {
		path := filepath.Join(dir, v.String()+".csv")
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		rows, err := ports.ReadCSV(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		records, _, err := ports.ParseRows(v, rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		s.Set(v, records)
	}
	return s, nil
}

// Set replaces the deliveries of a vehicle.
func (s *Store) Set(vehicle core.Vehicle, records []core.Delivery) {
	cp := append([]core.Delivery(nil), records...)
	for i := range cp {
		cp[i].Vehicle = vehicle
	}
	ports.SortByDateDesc(cp)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[vehicle] = cp
}

// ReadDeliveries returns a copy of the stored rows.
func (s *Store) ReadDeliveries(_ context.Context, vehicle core.Vehicle) ([]core.Delivery, error) {
	if !vehicle.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidVehicle, string(vehicle))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Delivery(nil), s.items[vehicle]...), nil
}

package cache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
	"gasdash/internal/sheets"
)

// Reader wraps a DeliveryReader and serves each vehicle's rows from memory
// until the TTL runs out. Concurrent misses for one vehicle share a
// single fetch.
type Reader struct {
	next   sheets.DeliveryReader
	lru    *LRU[core.Vehicle, []core.Delivery]
	group  singleflight.Group
	logger *applog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

var _ sheets.DeliveryReader = (*Reader)(nil)

// Stats reports cache effectiveness.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func NewReader(next sheets.DeliveryReader, ttl time.Duration, logger *applog.Logger) *Reader {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Reader{
		next:   next,
		lru:    NewLRU[core.Vehicle, []core.Delivery](len(core.Vehicles()), ttl),
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// ReadDeliveries returns a copy of the cached rows, fetching them on a miss.
// Failed fetches are not cached.
func (r *Reader) ReadDeliveries(ctx context.Context, vehicle core.Vehicle) ([]core.Delivery, error) {
	if rows, ok := r.lru.Get(vehicle); ok {
		r.hits.Add(1)
		return append([]core.Delivery(nil), rows...), nil
	}
	r.misses.Add(1)

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own ctx is done.
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(vehicle.String(), func() (any, error) {
		rows, err := r.next.ReadDeliveries(fetchCtx, vehicle)
		if err != nil {
			return nil, err
		}
		r.lru.Set(vehicle, rows)
		return rows, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	rows := res.Val.([]core.Delivery)
	r.logger.DebugContext(ctx, "Deliveries cached",
		applog.FieldVehicle, vehicle.String(),
		applog.FieldRecords, len(rows),
		"shared", res.Shared)
	return append([]core.Delivery(nil), rows...), nil
}

// Invalidate forgets one vehicle, or every vehicle when vehicle is empty.
func (r *Reader) Invalidate(vehicle core.Vehicle) {
	if vehicle == "" {
		r.lru.Purge()
		return
	}
	r.lru.Delete(vehicle)
}

func (r *Reader) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load(), Entries: r.lru.Len()}
}

// Run evicts expired entries every interval until ctx is done.
func (r *Reader) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.lru.CleanExpired(); n > 0 {
				r.logger.Debug("Expired deliveries evicted", "count", n)
			}
		}
	}
}

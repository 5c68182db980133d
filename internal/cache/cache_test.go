package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gasdash/internal/core"
)

type countingReader struct {
	calls atomic.Int64
	fail  atomic.Bool
	delay time.Duration
}

func (c *countingReader) ReadDeliveries(ctx context.Context, v core.Vehicle) ([]core.Delivery, error) {
	c.calls.Add(1)
	select {
	case <-time.After(c.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if c.fail.Load() {
		return nil, errors.New("sheet unavailable")
	}
	return []core.Delivery{{Vehicle: v, Date: "05/01/2024", Customer: "12 - Le Loi"}}, nil
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[string, int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatal("Purge should empty the cache")
	}
}

func TestLRU_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewLRU[string, int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(30 * time.Second)
	c.Set("b", 3)

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if removed := c.CleanExpired(); removed != 0 {
		t.Fatalf("CleanExpired removed %d, want 0", removed)
	}
	now = now.Add(time.Minute)
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", removed)
	}
}

func TestReader_CachesPerVehicle(t *testing.T) {
	src := &countingReader{}
	r := NewReader(src, time.Minute, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rows, err := r.ReadDeliveries(ctx, core.VehicleMoto)
		if err != nil || len(rows) != 1 {
			t.Fatalf("read %d: %v, %v", i, rows, err)
		}
		rows[0].Customer = "mutated"
	}
	if _, err := r.ReadDeliveries(ctx, core.VehicleTruck); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("source called %d times, want 2", got)
	}
	rows, _ := r.ReadDeliveries(ctx, core.VehicleMoto)
	if rows[0].Customer != "12 - Le Loi" {
		t.Fatal("callers must not be able to modify cached rows")
	}

	st := r.Stats()
	if st.Hits != 3 || st.Misses != 2 || st.Entries != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	r.Invalidate(core.VehicleMoto)
	r.ReadDeliveries(ctx, core.VehicleMoto)
	if got := src.calls.Load(); got != 3 {
		t.Fatalf("invalidate should force a refetch, calls = %d", got)
	}
	r.Invalidate("")
	if r.Stats().Entries != 0 {
		t.Fatal("empty vehicle should purge everything")
	}
}

func TestReader_ErrorsNotCached(t *testing.T) {
	src := &countingReader{}
	src.fail.Store(true)
	r := NewReader(src, time.Minute, nil)

	if _, err := r.ReadDeliveries(context.Background(), core.VehicleMoto); err == nil {
		t.Fatal("expected error")
	}
	src.fail.Store(false)
	if _, err := r.ReadDeliveries(context.Background(), core.VehicleMoto); err != nil {
		t.Fatalf("second read should succeed: %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("source called %d times, want 2", got)
	}
}

func TestReader_ConcurrentMissesShareFetch(t *testing.T) {
	src := &countingReader{delay: 50 * time.Millisecond}
	r := NewReader(src, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.ReadDeliveries(context.Background(), core.VehicleMoto); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if got := src.calls.Load(); got >= 8 {
		t.Fatalf("concurrent misses should share fetches, calls = %d", got)
	}
}

func TestReader_CancelledCallerDoesNotFailOthers(t *testing.T) {
	src := &countingReader{delay: 100 * time.Millisecond}
	r := NewReader(src, time.Minute, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.ReadDeliveries(first, core.VehicleMoto)
		firstErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := r.ReadDeliveries(context.Background(), core.VehicleMoto)
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: err = %v, want context.Canceled", err)
	}
	if err := <-second; err != nil {
		t.Fatalf("waiting caller should get the shared result, got %v", err)
	}
	if _, ok := r.lru.Get(core.VehicleMoto); !ok {
		t.Fatal("the detached fetch should still fill the cache")
	}
}

package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gasdash/internal/amqp"
	"gasdash/internal/core"
	"gasdash/internal/services"
)

type fakeImporter struct {
	mu    sync.Mutex
	calls []core.Vehicle
	fail  map[core.Vehicle]error
}

func (f *fakeImporter) ImportSales(_ context.Context, v core.Vehicle) (services.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, v)
	if err := f.fail[v]; err != nil {
		return services.ImportResult{}, err
	}
	return services.ImportResult{Vehicle: v, Inserted: 2}, nil
}

func (f *fakeImporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestHandleSalesImportMessage(t *testing.T) {
	imp := &fakeImporter{}
	w := NewImportWorker(imp, 0, nil)

	if err := w.HandleSalesImportMessage(context.Background(), amqp.NewSalesImportMessage(core.VehicleTruck)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(imp.calls) != 1 || imp.calls[0] != core.VehicleTruck {
		t.Fatalf("unexpected calls: %v", imp.calls)
	}

	boom := errors.New("sheet unavailable")
	imp.fail = map[core.Vehicle]error{core.VehicleMoto: boom}
	if err := w.HandleSalesImportMessage(context.Background(), amqp.NewSalesImportMessage(core.VehicleMoto)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestStartupImport(t *testing.T) {
	boom := errors.New("boom")
	imp := &fakeImporter{fail: map[core.Vehicle]error{core.VehicleMoto: boom}}
	w := NewImportWorker(imp, 0, nil)

	err := w.StartupImport(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if imp.count() != 2 {
		t.Fatalf("every vehicle should be attempted, got %d calls", imp.count())
	}
}

func TestRunStopsWithContext(t *testing.T) {
	imp := &fakeImporter{}
	w := NewImportWorker(imp, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for imp.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("periodic import never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunDisabled(t *testing.T) {
	imp := &fakeImporter{}
	NewImportWorker(imp, 0, nil).Run(context.Background())
	if imp.count() != 0 {
		t.Fatal("zero interval must not import")
	}
}

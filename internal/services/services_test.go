package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"gasdash/internal/cache"
	"gasdash/internal/core"
	"gasdash/internal/report"
	"gasdash/internal/sheets/memory"
	"gasdash/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestReader() *memory.Store {
	store := memory.New()
	store.Set(core.VehicleMoto, []core.Delivery{
		{Date: "05/01/2024", CustomerCode: "12", Customer: "12 - Le Loi", Street: "Le Loi", ProductType: "A500", Quantity: dec("2"), Amount: dec("600000"), PaymentMethod: "cash"},
		{Date: "06/01/2024", CustomerCode: "7", Customer: "7 - Tran Phu", Street: "Tran Phu", ProductType: "O1_5", Quantity: dec("1"), Amount: dec("300000"), PaymentMethod: "card"},
		{Date: "", CustomerCode: "12", Customer: "12 - Le Loi", Street: "Le Loi", ProductType: "A500", Quantity: dec("1"), Amount: dec("300000"), PaymentMethod: "cash"},
		{Date: "06/01/2024", CustomerCode: "12", Customer: "12 - Le Loi", Street: "Le Loi", ProductType: "A500", Quantity: dec("3"), Amount: dec("900000"), PaymentMethod: "cash"},
	})
	store.Set(core.VehicleTruck, []core.Delivery{
		{Date: "07/01/2024", CustomerCode: "KH9", Customer: "KH9", ProductType: "A500", Quantity: dec("10"), Amount: dec("3000000"), PaymentMethod: "transfer"},
	})
	return store
}

type failingReader struct{ calls int }

func (f *failingReader) ReadDeliveries(context.Context, core.Vehicle) ([]core.Delivery, error) {
	f.calls++
	return nil, errors.New("sheet unavailable")
}

func TestDeliveryService_Dashboard(t *testing.T) {
	ctx := context.Background()
	svc := NewDeliveryService(newTestReader(), nil)

	t.Run("filtered report and totals share one slice", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, core.VehicleMoto, core.DeliveryFilter{Streets: []string{"Le Loi"}}, report.Day)
		if err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
		if len(d.Records) != 3 || d.Empty {
			t.Fatalf("expected 3 records, got %d", len(d.Records))
		}
		if d.Totals.Records != 3 || !d.Totals.Amount.Equal(dec("1800000")) {
			t.Fatalf("unexpected totals: %+v", d.Totals)
		}
		if d.Report.Dropped != 1 || len(d.Report.Buckets) != 2 {
			t.Fatalf("unexpected report: %+v", d.Report)
		}
		if d.Report.Buckets[0].Label != "2024-01-06" {
			t.Fatalf("most recent bucket first, got %q", d.Report.Buckets[0].Label)
		}
		if len(d.Options.Streets) != 2 {
			t.Fatalf("options should cover unfiltered rows: %v", d.Options.Streets)
		}
	})

	t.Run("no match is empty", func(t *testing.T) {
		d, err := svc.Dashboard(ctx, core.VehicleMoto, core.DeliveryFilter{Customers: []string{"nobody"}}, report.Month)
		if err != nil {
			t.Fatalf("Dashboard: %v", err)
		}
		if !d.Empty || len(d.Report.Buckets) != 0 || !d.Totals.Amount.IsZero() {
			t.Fatalf("expected empty dashboard, got %+v", d)
		}
	})

	t.Run("invalid granularity fails before loading", func(t *testing.T) {
		reader := &failingReader{}
		_, err := NewDeliveryService(reader, nil).Dashboard(ctx, core.VehicleMoto, core.DeliveryFilter{}, report.Granularity("fortnight"))
		if !errors.Is(err, report.ErrInvalidGranularity) {
			t.Fatalf("expected ErrInvalidGranularity, got %v", err)
		}
		if reader.calls != 0 {
			t.Fatalf("reader should not be called")
		}
	})

	t.Run("invalid vehicle", func(t *testing.T) {
		if _, err := svc.Dashboard(ctx, core.Vehicle("bus"), core.DeliveryFilter{}, report.Day); !errors.Is(err, core.ErrInvalidVehicle) {
			t.Fatalf("expected ErrInvalidVehicle, got %v", err)
		}
	})

	t.Run("reader failure is wrapped", func(t *testing.T) {
		_, err := NewDeliveryService(&failingReader{}, nil).Dashboard(ctx, core.VehicleTruck, core.DeliveryFilter{}, report.Year)
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDeliveryService_Options(t *testing.T) {
	opts, err := NewDeliveryService(newTestReader(), nil).Options(context.Background(), core.VehicleTruck)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(opts.Customers) != 1 || opts.Customers[0] != "KH9" {
		t.Fatalf("unexpected customers: %v", opts.Customers)
	}
}

func TestDeliveryService_RefreshDropsCachedRows(t *testing.T) {
	ctx := context.Background()
	store := newTestReader()
	cached := cache.NewReader(store, time.Hour, nil)
	svc := NewDeliveryService(cached, nil)

	if _, err := svc.Deliveries(ctx, core.VehicleTruck); err != nil {
		t.Fatal(err)
	}
	store.Set(core.VehicleTruck, nil)

	rows, _ := svc.Deliveries(ctx, core.VehicleTruck)
	if len(rows) != 1 {
		t.Fatalf("cached read should still see 1 row, got %d", len(rows))
	}
	n, err := svc.Refresh(ctx, core.VehicleTruck)
	if err != nil || n != 0 {
		t.Fatalf("Refresh = %d, %v; want 0 rows from the source", n, err)
	}
	if rows, _ := svc.Deliveries(ctx, core.VehicleTruck); len(rows) != 0 {
		t.Fatalf("refreshed read returned %d rows", len(rows))
	}

	if _, err := svc.Refresh(ctx, "bus"); !errors.Is(err, core.ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}
	if n, err := NewDeliveryService(newTestReader(), nil).Refresh(ctx, core.VehicleMoto); err != nil || n != 4 {
		t.Fatalf("uncached Refresh = %d, %v", n, err)
	}
}

func TestAttendanceService_MonthSheetDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewAttendanceService(newTestRepo(t), nil)

	emp, err := svc.CreateEmployee(ctx, core.Employee{Name: "Lan"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 2024-02-04 is a Sunday.
	entries := []core.AttendanceEntry{
		{Date: civil.Date{Year: 2024, Month: time.February, Day: 1}, Presence: 0.5},
		{Date: civil.Date{Year: 2024, Month: time.February, Day: 4}, Presence: 1},
	}
	if err := svc.SaveMonth(ctx, emp.ID, 2024, time.February, entries); err != nil {
		t.Fatalf("save: %v", err)
	}

	sheet, err := svc.MonthSheet(ctx, emp.ID, 2024, time.February)
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}
	if len(sheet.Days) != 29 {
		t.Fatalf("expected 29 days, got %d", len(sheet.Days))
	}
	checks := map[int]struct {
		presence float64
		stored   bool
	}{
		1:  {0.5, true},
		2:  {1, false},
		4:  {1, true},
		11: {0, false},
	}
	for dayNum, want := range checks {
		got := sheet.Days[dayNum-1]
		if got.Presence != want.presence || got.Stored != want.stored {
			t.Errorf("day %d: got %+v, want presence %v stored %v", dayNum, got, want.presence, want.stored)
		}
	}
	if !sheet.Days[10].Sunday {
		t.Errorf("2024-02-11 should be a Sunday")
	}
}

func TestAttendanceService_SaveMonthValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAttendanceService(newTestRepo(t), nil)
	emp, err := svc.CreateEmployee(ctx, core.Employee{Name: "Binh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name    string
		month   time.Month
		entries []core.AttendanceEntry
		want    error
	}{
		{"bad presence", time.March, []core.AttendanceEntry{{Date: civil.Date{Year: 2024, Month: time.March, Day: 2}, Presence: 0.3}}, core.ErrInvalidPresence},
		{"outside month", time.March, []core.AttendanceEntry{{Date: civil.Date{Year: 2024, Month: time.April, Day: 2}, Presence: 1}}, core.ErrInvalidDate},
		{"bad month", time.Month(13), nil, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.SaveMonth(ctx, emp.ID, 2024, tt.month, tt.entries); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	err = svc.SaveMonth(ctx, emp.ID+100, 2024, time.March, []core.AttendanceEntry{{Date: civil.Date{Year: 2024, Month: time.March, Day: 2}, Presence: 1}})
	if !errors.Is(err, core.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := svc.CreateEmployee(ctx, core.Employee{Name: " "}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestAttendanceService_MonthReport(t *testing.T) {
	ctx := context.Background()
	svc := NewAttendanceService(newTestRepo(t), nil)

	lan, _ := svc.CreateEmployee(ctx, core.Employee{Name: "Lan"})
	binh, _ := svc.CreateEmployee(ctx, core.Employee{Name: "Binh"})
	if _, err := svc.CreateEmployee(ctx, core.Employee{Name: "Chi"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	d := func(day int) civil.Date { return civil.Date{Year: 2024, Month: time.February, Day: day} }
	if err := svc.SaveMonth(ctx, lan.ID, 2024, time.February, []core.AttendanceEntry{{Date: d(1), Presence: 1}, {Date: d(2), Presence: 0.5}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.SaveMonth(ctx, binh.ID, 2024, time.February, []core.AttendanceEntry{{Date: d(3), Presence: 0.75}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Last write wins.
	if err := svc.SaveMonth(ctx, lan.ID, 2024, time.February, []core.AttendanceEntry{{Date: d(2), Presence: 1}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	rep, err := svc.MonthReport(ctx, 2024, time.February)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.WorkDays != 25 || len(rep.Days) != 29 {
		t.Fatalf("expected 25 work days over 29, got %d over %d", rep.WorkDays, len(rep.Days))
	}
	if len(rep.Rows) != 2 {
		t.Fatalf("only employees with entries are listed, got %d rows", len(rep.Rows))
	}
	totals := map[int64]float64{}
	for _, row := range rep.Rows {
		totals[row.EmployeeID] = row.Total
		if len(row.Presence) != 29 {
			t.Errorf("%s: expected a value for every day, got %d", row.EmployeeName, len(row.Presence))
		}
	}
	if totals[lan.ID] != 2 || totals[binh.ID] != 0.75 {
		t.Fatalf("unexpected totals: %v", totals)
	}
}

func TestPricingService(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewPricingService(repo, newTestReader(), nil)

	added, err := svc.SyncCustomers(ctx)
	if err != nil || added != 3 {
		t.Fatalf("expected 3 customers added, got %d (%v)", added, err)
	}
	if again, err := svc.SyncCustomers(ctx); err != nil || again != 0 {
		t.Fatalf("second sync should add nothing, got %d (%v)", again, err)
	}

	if _, err := repo.EnsureProduct(ctx, "A500"); err != nil {
		t.Fatalf("product: %v", err)
	}
	if _, err := svc.SetPrice(ctx, "12", "A500", dec("-1")); !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := svc.SetPrice(ctx, "99", "A500", dec("1")); !errors.Is(err, core.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := svc.SetPrice(ctx, "12", "B12", dec("1")); !errors.Is(err, core.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.SetPrice(ctx, "12", "A500", dec("310000")); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if _, err := svc.SetPrice(ctx, "12", "A500", dec("320000")); err != nil {
		t.Fatalf("update price: %v", err)
	}

	prices, err := svc.Prices(ctx, storage.PriceFilter{Customer: "12"})
	if err != nil || len(prices) != 1 || !prices[0].Price.Equal(dec("320000")) {
		t.Fatalf("unexpected prices: %+v (%v)", prices, err)
	}
	customers, err := svc.Customers(ctx)
	if err != nil || len(customers) != 3 {
		t.Fatalf("unexpected customers: %+v (%v)", customers, err)
	}
}

type recordingPublisher struct {
	vehicles []core.Vehicle
}

func (p *recordingPublisher) PublishSalesImport(_ context.Context, v core.Vehicle) (string, error) {
	p.vehicles = append(p.vehicles, v)
	return "msg-1", nil
}

func TestInventoryService_ImportSales(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	svc := NewInventoryService(repo, newTestReader(), nil, nil)

	if _, err := svc.AddProduct(ctx, "A500"); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := svc.SetInventory(ctx, "A500", 100); err != nil {
		t.Fatalf("set inventory: %v", err)
	}

	res, err := svc.ImportSales(ctx, core.VehicleMoto)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 1 || res.Undated != 1 {
		t.Fatalf("unexpected import result: %+v", res)
	}
	again, err := svc.ImportSales(ctx, core.VehicleMoto)
	if err != nil || again.Inserted != 0 {
		t.Fatalf("re-import should be idempotent: %+v (%v)", again, err)
	}

	left, err := svc.Remaining(ctx, "A500")
	if err != nil || left != 95 {
		t.Fatalf("expected 95 remaining, got %d (%v)", left, err)
	}

	req, err := svc.RequestSalesImport(ctx, core.VehicleTruck)
	if err != nil || req.Queued || req.Result == nil || req.Result.Inserted != 1 {
		t.Fatalf("inline import expected, got %+v (%v)", req, err)
	}
	if left, _ := svc.Remaining(ctx, "A500"); left != 85 {
		t.Fatalf("expected 85 remaining, got %d", left)
	}
}

func TestInventoryService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewInventoryService(newTestRepo(t), newTestReader(), nil, nil)

	if _, err := svc.AddProduct(ctx, "  "); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.SetInventory(ctx, "A500", -1); !errors.Is(err, core.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if _, err := svc.SetInventory(ctx, "missing", 1); !errors.Is(err, core.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.ImportSales(ctx, core.Vehicle("bus")); !errors.Is(err, core.ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle, got %v", err)
	}
}

func TestInventoryService_RequestSalesImportQueued(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewInventoryService(newTestRepo(t), &failingReader{}, pub, nil)

	req, err := svc.RequestSalesImport(context.Background(), core.VehicleMoto)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !req.Queued || req.MessageID != "msg-1" || req.Result != nil {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(pub.vehicles) != 1 || pub.vehicles[0] != core.VehicleMoto {
		t.Fatalf("unexpected published vehicles: %v", pub.vehicles)
	}
}

func TestInventoryService_ProductSummary(t *testing.T) {
	svc := NewInventoryService(newTestRepo(t), newTestReader(), nil, nil)

	rep, err := svc.ProductSummary(context.Background(), core.VehicleMoto, report.Month)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if rep.Dropped != 1 || len(rep.Rows) != 2 {
		t.Fatalf("unexpected summary: %+v", rep)
	}
	if rep.Rows[0].Product != "A500" || !rep.Rows[0].Quantity.Equal(dec("5")) {
		t.Fatalf("unexpected first row: %+v", rep.Rows[0])
	}
	if _, err := svc.ProductSummary(context.Background(), core.VehicleMoto, report.Granularity("x")); !errors.Is(err, report.ErrInvalidGranularity) {
		t.Fatalf("expected ErrInvalidGranularity, got %v", err)
	}
}

func TestSaleRefDistinguishesDuplicates(t *testing.T) {
	r := core.Delivery{CustomerCode: "12", ProductType: "A500", Quantity: dec("1")}
	date := civil.Date{Year: 2024, Month: time.January, Day: 5}
	seen := map[string]int{}
	a := saleRef(core.VehicleMoto, r, date, seen)
	b := saleRef(core.VehicleMoto, r, date, seen)
	if a == b {
		t.Fatal("identical rows in one import need distinct refs")
	}
	if again := saleRef(core.VehicleMoto, r, date, map[string]int{}); again != a {
		t.Fatal("refs must be stable across imports")
	}
}

package core

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func sampleDeliveries() []Delivery {
	return []Delivery{
		{Date: "05/01/2024", Customer: "12 - Le Loi", Street: "Le Loi", ProductType: "A500", PaymentMethod: "cash"},
		{Date: "06/01/2024", Customer: "7 - Tran Phu", Street: "Tran Phu", ProductType: "O1_5", PaymentMethod: "card"},
		{Date: "bad", Customer: "12 - Le Loi", Street: "Le Loi", ProductType: "A500", PaymentMethod: "cash"},
		{Date: "10/01/2024", Customer: "3 - Le Loi", Street: "Le Loi", ProductType: "A500", PaymentMethod: ""},
	}
}

func TestDeliveryFilterApply(t *testing.T) {
	records := sampleDeliveries()
	from := civil.Date{Year: 2024, Month: time.January, Day: 6}
	to := civil.Date{Year: 2024, Month: time.January, Day: 10}

	tests := []struct {
		name   string
		filter DeliveryFilter
		want   int
	}{
		{"zero filter keeps all", DeliveryFilter{}, 4},
		{"street", DeliveryFilter{Streets: []string{"Le Loi"}}, 3},
		{"street and method", DeliveryFilter{Streets: []string{"Le Loi"}, PaymentMethods: []string{"cash"}}, 2},
		{"date range drops undated", DeliveryFilter{From: &from, To: &to}, 2},
		{"inclusive bounds", DeliveryFilter{From: &to, To: &to}, 1},
		{"no match", DeliveryFilter{Customers: []string{"nobody"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(records)
			if len(got) != tt.want {
				t.Fatalf("got %d records, want %d", len(got), tt.want)
			}
		})
	}

	if records[2].Date != "bad" || len(records) != 4 {
		t.Fatalf("Apply must not modify its input")
	}
}

func TestDeliveryFilterIsZero(t *testing.T) {
	if !(DeliveryFilter{}).IsZero() {
		t.Fatalf("empty filter should be zero")
	}
	if (DeliveryFilter{Drivers2: []string{"Hai"}}).IsZero() {
		t.Fatalf("filter with drivers should not be zero")
	}

	records := sampleDeliveries()
	kept := DeliveryFilter{}.Apply(records)
	if len(kept) != len(records) {
		t.Fatalf("zero filter kept %d of %d records", len(kept), len(records))
	}
	kept[0].Customer = "changed"
	if records[0].Customer == "changed" {
		t.Fatalf("zero filter must return a copy")
	}
}

func TestOptions(t *testing.T) {
	opts := Options(sampleDeliveries())
	if len(opts.Customers) != 3 || opts.Customers[0] != "12 - Le Loi" {
		t.Fatalf("unexpected customers: %v", opts.Customers)
	}
	if len(opts.Streets) != 2 {
		t.Fatalf("unexpected streets: %v", opts.Streets)
	}
	if len(opts.PaymentMethods) != 2 {
		t.Fatalf("blank payment method should be skipped: %v", opts.PaymentMethods)
	}
	if len(opts.Drivers1) != 0 {
		t.Fatalf("expected no drivers: %v", opts.Drivers1)
	}
}

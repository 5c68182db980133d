package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"gasdash/internal/core"
	"gasdash/internal/report"
	"gasdash/internal/services"
	"gasdash/internal/sheets/memory"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"defaults", nil, false},
		{"truck by week", []string{"-vehicle", "truck", "-period", "week"}, false},
		{"date range", []string{"-from", "2024-01-01", "-to", "31/01/2024"}, false},
		{"unknown vehicle", []string{"-vehicle", "bus"}, true},
		{"unknown period", []string{"-period", "fortnight"}, true},
		{"bad date", []string{"-from", "soon"}, true},
		{"inverted range", []string{"-from", "2024-02-01", "-to", "2024-01-01"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.name == "defaults" && (opts.vehicle != core.VehicleMoto || opts.period != report.Month) {
				t.Fatalf("unexpected defaults: %+v", opts)
			}
		})
	}
}

func TestRender(t *testing.T) {
	reader := memory.New()
	reader.Set(core.VehicleMoto, []core.Delivery{
		{Date: "05/01/2024", ProductType: "A500", Quantity: decimal.NewFromInt(2), Amount: decimal.NewFromInt(600000), PaymentMethod: "cash"},
		{Date: "20/02/2024", ProductType: "A500", Quantity: decimal.NewFromInt(1), Amount: decimal.NewFromInt(300000), PaymentMethod: "card"},
		{Date: "", ProductType: "A500", Quantity: decimal.NewFromInt(1), Amount: decimal.NewFromInt(300000), PaymentMethod: "card"},
	})
	dash, err := services.NewDeliveryService(reader, nil).
		Dashboard(context.Background(), core.VehicleMoto, core.DeliveryFilter{}, report.Month)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := render(&buf, dash); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"MONTH", "01/02 - 29/02", "01/01 - 31/01", "cash=1", "3 records", "totals include 1 records without a readable date"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "01/02 - 29/02") > strings.Index(out, "01/01 - 31/01") {
		t.Error("most recent period should come first")
	}
}

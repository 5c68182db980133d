package sheets

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"gasdash/internal/core"
)

func header() []string {
	return []string{"\ufeff" + ColDate, ColCustomerCode, ColStreet, ColProductType, ColCylinderType,
		ColQuantity, ColShellsReturned, ColAmount, ColPaymentMethod, ColDriver1, ColDriver2}
}

func TestParseRowsMoto(t *testing.T) {
	rows := [][]string{
		header(),
		{"05/01/2024", "12", "Lê Lợi", "A500", "12kg", "2", "1", "700,000", "TM", "Hùng", ""},
		{"", "", "", "", "", "", "", "", "", "", ""},
		{"not a date", "7", "Trần Phú", "A500", "12kg", "1", "", "350,000", "CK", "Hùng", "Nam"},
		{"06/01/2024", "9", "Hai Bà Trưng", "O1_5", "", "x", "", "0", "TM", "", ""},
	}
	got, skipped, err := ParseRows(core.VehicleMoto, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if len(skipped) != 1 || skipped[0].Row != 5 || !errors.Is(skipped[0], core.ErrInvalidMeasure) {
		t.Fatalf("unexpected skipped rows: %+v", skipped)
	}
	first := got[0]
	if first.Customer != "12 - Lê Lợi" || first.Vehicle != core.VehicleMoto {
		t.Fatalf("unexpected customer key: %+v", first)
	}
	if !first.Amount.Equal(decimal.NewFromInt(700000)) || !first.ShellsReturned.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("unexpected measures: %+v", first)
	}
	if got[1].Date != "not a date" {
		t.Fatalf("undated rows must be kept, got %+v", got[1])
	}
}

func TestParseRowsTruckCustomerIsCode(t *testing.T) {
	rows := [][]string{
		{ColDate, ColCustomerCode, ColProductType, ColQuantity, ColAmount, ColPaymentMethod},
		{"05/01/2024", "Đại lý Minh", "A500", "40", "14,000,000", "CK"},
	}
	got, _, err := ParseRows(core.VehicleTruck, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Customer != "Đại lý Minh" || got[0].Street != "" {
		t.Fatalf("unexpected deliveries: %+v", got)
	}
}

func TestParseRowsNormalizesText(t *testing.T) {
	decomposed := "Le\u0302" // e + combining circumflex
	rows := [][]string{
		header(),
		{"05/01/2024", "1", decomposed, "A500", "", "1", "", "1", "TM", "", ""},
	}
	got, _, err := ParseRows(core.VehicleMoto, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Street != "L\u00ea" {
		t.Fatalf("expected NFC street, got %q", got[0].Street)
	}
}

func TestParseRowsMissingColumn(t *testing.T) {
	_, _, err := ParseRows(core.VehicleMoto, [][]string{{ColDate, ColCustomerCode}})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	got, _, err := ParseRows(core.VehicleMoto, nil)
	if err != nil || got != nil {
		t.Fatalf("expected nothing for an empty sheet, got %v, %v", got, err)
	}
}

func TestSortByDateDesc(t *testing.T) {
	records := []core.Delivery{
		{Date: "01/01/2024", CustomerCode: "a"},
		{Date: "bad", CustomerCode: "b"},
		{Date: "03/01/2024", CustomerCode: "c"},
		{Date: "01/01/2024", CustomerCode: "d"},
	}
	SortByDateDesc(records)
	want := []string{"c", "a", "d", "b"}
	for i, w := range want {
		if records[i].CustomerCode != w {
			t.Fatalf("position %d: got %q, want %q", i, records[i].CustomerCode, w)
		}
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("a,b,c\n1,2\n3,4\"x,5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 || len(rows[1]) != 2 || rows[2][1] != "4\"x" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

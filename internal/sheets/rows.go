package sheets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"gasdash/internal/core"
)

// Column headers of the delivery sheets.
const (
	ColDate           = "Ngày"
	ColCustomerCode   = "Khách hàng ( Hoặc số địa chỉ)"
	ColStreet         = "Tên đường"
	ColProductType    = "Loại sản phẩm"
	ColCylinderType   = "Loại bình"
	ColQuantity       = "Số lượng Giao"
	ColShellsReturned = "Vỏ về"
	ColAmount         = "Thanh Toán"
	ColPaymentMethod  = "Phương Thức Thanh Toán"
	ColDriver1        = "Người chở 1"
	ColDriver2        = "Người chở 2"
)

var ErrMissingColumn = errors.New("missing column")

// RowError describes a row skipped because a numeric cell did not parse.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// ParseRows maps a sheet, header row first, to deliveries. Rows whose date
// does not parse are kept so reports can count them; rows with a malformed
// measure are skipped and returned as RowErrors. Blank rows are ignored.
func ParseRows(vehicle core.Vehicle, rows [][]string) ([]core.Delivery, []RowError, error) {
	if len(rows) == 0 {
		return nil, nil, nil
	}
	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		h = normalize(h)
		if i == 0 {
			h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		if _, dup := header[h]; !dup {
			header[h] = i
		}
	}
	for _, required := range []string{ColDate, ColCustomerCode, ColQuantity, ColAmount} {
		if _, ok := header[normalize(required)]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}
	cell := func(row []string, col string) string {
		i, ok := header[normalize(col)]
		if !ok || i >= len(row) {
			return ""
		}
		return normalize(row[i])
	}

	out := make([]core.Delivery, 0, len(rows)-1)
	var skipped []RowError
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		d := core.Delivery{
			Vehicle:       vehicle,
			Date:          cell(row, ColDate),
			CustomerCode:  cell(row, ColCustomerCode),
			Street:        cell(row, ColStreet),
			ProductType:   cell(row, ColProductType),
			CylinderType:  cell(row, ColCylinderType),
			PaymentMethod: cell(row, ColPaymentMethod),
			Driver1:       cell(row, ColDriver1),
			Driver2:       cell(row, ColDriver2),
		}
		d.Customer = displayCustomer(vehicle, d.CustomerCode, d.Street)

		var err error
		if d.Quantity, err = core.ParseMeasure(cell(row, ColQuantity)); err != nil {
			skipped = append(skipped, RowError{Row: n + 2, Err: err})
			continue
		}
		if d.ShellsReturned, err = core.ParseMeasure(cell(row, ColShellsReturned)); err != nil {
			skipped = append(skipped, RowError{Row: n + 2, Err: err})
			continue
		}
		if d.Amount, err = core.ParseMeasure(cell(row, ColAmount)); err != nil {
			skipped = append(skipped, RowError{Row: n + 2, Err: err})
			continue
		}
		out = append(out, d)
	}
	return out, skipped, nil
}

// SortByDateDesc orders deliveries most recent first; undated rows go last.
// Rows of the same day keep their sheet order.
func SortByDateDesc(records []core.Delivery) {
	type keyed struct {
		dated bool
		date  string
		d     core.Delivery
	}
	tmp := make([]keyed, len(records))
	for i, r := range records {
		d, err := r.CalendarDate()
		tmp[i] = keyed{dated: err == nil, date: d.String(), d: r}
	}
	sort.SliceStable(tmp, func(a, b int) bool {
		if tmp[a].dated != tmp[b].dated {
			return tmp[a].dated
		}
		return tmp[a].date > tmp[b].date
	})
	for i := range tmp {
		records[i] = tmp[i].d
	}
}

// displayCustomer builds the customer key shown in filters: motorbike rows
// join the address number and street, truck rows use the code alone.
func displayCustomer(vehicle core.Vehicle, code, street string) string {
	if vehicle == core.VehicleMoto && street != "" {
		return code + " - " + street
	}
	return code
}

func normalize(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

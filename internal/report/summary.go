package report

import (
	"github.com/shopspring/decimal"

	"gasdash/internal/core"
)

// Totals is the overall summary of a filtered record set.
type Totals struct {
	Records  int             `json:"records"`
	Quantity decimal.Decimal `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	// Undated counts records included above that fall in no period bucket,
	// so bucket sums fall short of the totals by exactly these rows.
	Undated int `json:"undated"`
}

// Summarize sums quantity and amount over every record, dated or not, and
// counts the undated ones. It must be given the same slice passed to
// Aggregate.
func Summarize(records []core.Delivery) Totals {
	t := Totals{Records: len(records), Quantity: decimal.Zero, Amount: decimal.Zero}
	for _, r := range records {
		t.Quantity = t.Quantity.Add(r.Quantity)
		t.Amount = t.Amount.Add(r.Amount)
		if _, err := r.CalendarDate(); err != nil {
			t.Undated++
		}
	}
	return t
}

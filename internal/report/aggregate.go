package report

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"gasdash/internal/core"
)

type (
	// PeriodBucket holds the totals of the records falling in one period.
	PeriodBucket struct {
		Label               string          `json:"label"`
		TotalQuantity       decimal.Decimal `json:"total_quantity"`
		TotalAmount         decimal.Decimal `json:"total_amount"`
		PaymentMethodCounts map[string]int  `json:"payment_method_counts"`
	}

	// Report is the result of Aggregate. Buckets are ordered most recent
	// first. Dropped counts the records excluded for an unparseable date.
	Report struct {
		Granularity Granularity    `json:"granularity"`
		Buckets     []PeriodBucket `json:"buckets"`
		Dropped     int            `json:"dropped"`
	}
)

// dated pairs a record with its coerced date without touching the caller's slice.
type dated struct {
	date   civil.Date
	record *core.Delivery
}

// Aggregate groups records into periods of granularity g and sums quantity,
// amount and payment methods per period. An empty or fully undated input
// yields a report with no buckets and no error.
func Aggregate(records []core.Delivery, g Granularity) (Report, error) {
	if err := g.Validate(); err != nil {
		return Report{}, err
	}

	rows, dropped := coerceDates(records)
	type acc struct {
		period period
		bucket PeriodBucket
	}
	groups := make(map[civil.Date]*acc)
	for _, row := range rows {
		p := periodOf(row.date, g)
		a, ok := groups[p.start]
		if !ok {
			a = &acc{period: p, bucket: PeriodBucket{
				TotalQuantity:       decimal.Zero,
				TotalAmount:         decimal.Zero,
				PaymentMethodCounts: map[string]int{},
			}}
			groups[p.start] = a
		}
		a.bucket.TotalQuantity = a.bucket.TotalQuantity.Add(row.record.Quantity)
		a.bucket.TotalAmount = a.bucket.TotalAmount.Add(row.record.Amount)
		// A blank cell carries no payment label.
		if m := row.record.PaymentMethod; strings.TrimSpace(m) != "" {
			a.bucket.PaymentMethodCounts[m]++
		}
	}

	ordered := make([]*acc, 0, len(groups))
	for _, a := range groups {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].period.start.After(ordered[j].period.start)
	})

	periods := make([]period, len(ordered))
	for i, a := range ordered {
		periods[i] = a.period
	}
	withYear := spansYears(periods)

	out := Report{Granularity: g, Buckets: make([]PeriodBucket, 0, len(ordered)), Dropped: dropped}
	for _, a := range ordered {
		a.bucket.Label = a.period.label(g, withYear)
		out.Buckets = append(out.Buckets, a.bucket)
	}
	return out, nil
}

// coerceDates parses every record's date and returns the parseable ones
// along with the number that failed.
func coerceDates(records []core.Delivery) ([]dated, int) {
	rows := make([]dated, 0, len(records))
	dropped := 0
	for i := range records {
		d, err := records[i].CalendarDate()
		if err != nil {
			dropped++
			continue
		}
		rows = append(rows, dated{date: d, record: &records[i]})
	}
	return rows, dropped
}

// spansYears reports whether the periods start in more than one calendar
// year, in which case "dd/mm" labels could repeat.
func spansYears(periods []period) bool {
	if len(periods) == 0 {
		return false
	}
	year := periods[0].start.Year
	for _, p := range periods[1:] {
		if p.start.Year != year {
			return true
		}
	}
	return false
}

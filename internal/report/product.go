package report

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"gasdash/internal/core"
)

// ProductBucket is the quantity delivered and shells returned for one
// product within one period.
type ProductBucket struct {
	Label          string          `json:"label"`
	Product        string          `json:"product"`
	Quantity       decimal.Decimal `json:"quantity"`
	ShellsReturned decimal.Decimal `json:"shells_returned"`
}

// ProductReport lists product totals per period, most recent period first
// and products by name within a period.
type ProductReport struct {
	Granularity Granularity     `json:"granularity"`
	Rows        []ProductBucket `json:"rows"`
	Dropped     int             `json:"dropped"`
}

// AggregateByProduct uses the same periods as Aggregate but splits each
// period by product type.
func AggregateByProduct(records []core.Delivery, g Granularity) (ProductReport, error) {
	if err := g.Validate(); err != nil {
		return ProductReport{}, err
	}

	type key struct {
		start   civil.Date
		product string
	}
	type acc struct {
		period period
		row    ProductBucket
	}

	rows, dropped := coerceDates(records)
	groups := make(map[key]*acc)
	for _, row := range rows {
		p := periodOf(row.date, g)
		k := key{start: p.start, product: row.record.ProductType}
		a, ok := groups[k]
		if !ok {
			a = &acc{period: p, row: ProductBucket{
				Product:        k.product,
				Quantity:       decimal.Zero,
				ShellsReturned: decimal.Zero,
			}}
			groups[k] = a
		}
		a.row.Quantity = a.row.Quantity.Add(row.record.Quantity)
		a.row.ShellsReturned = a.row.ShellsReturned.Add(row.record.ShellsReturned)
	}

	ordered := make([]*acc, 0, len(groups))
	periods := make([]period, 0, len(groups))
	for _, a := range groups {
		ordered = append(ordered, a)
		periods = append(periods, a.period)
	}
	sort.Slice(ordered, func(i, j int) bool {
		si, sj := ordered[i].period.start, ordered[j].period.start
		if si != sj {
			return si.After(sj)
		}
		return ordered[i].row.Product < ordered[j].row.Product
	})
	withYear := spansYears(periods)

	out := ProductReport{Granularity: g, Rows: make([]ProductBucket, 0, len(ordered)), Dropped: dropped}
	for _, a := range ordered {
		a.row.Label = a.period.label(g, withYear)
		out.Rows = append(out.Rows, a.row)
	}
	return out, nil
}

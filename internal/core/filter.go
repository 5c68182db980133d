package core

import "cloud.google.com/go/civil"

// DeliveryFilter narrows a delivery list. Empty selections impose no
// constraint; a set date range excludes rows without a parseable date.
type DeliveryFilter struct {
	From           *civil.Date `json:"from,omitempty"`
	To             *civil.Date `json:"to,omitempty"`
	Customers      []string    `json:"customers,omitempty"`
	ProductTypes   []string    `json:"product_types,omitempty"`
	Streets        []string    `json:"streets,omitempty"`
	CylinderTypes  []string    `json:"cylinder_types,omitempty"`
	PaymentMethods []string    `json:"payment_methods,omitempty"`
	Drivers1       []string    `json:"drivers_1,omitempty"`
	Drivers2       []string    `json:"drivers_2,omitempty"`
}

// FilterOptions lists the distinct values a DeliveryFilter can select.
type FilterOptions struct {
	Customers      []string `json:"customers"`
	ProductTypes   []string `json:"product_types"`
	Streets        []string `json:"streets"`
	CylinderTypes  []string `json:"cylinder_types"`
	PaymentMethods []string `json:"payment_methods"`
	Drivers1       []string `json:"drivers_1"`
	Drivers2       []string `json:"drivers_2"`
}

// IsZero reports whether the filter would keep every record.
func (f DeliveryFilter) IsZero() bool {
	return f.From == nil && f.To == nil &&
		len(f.Customers) == 0 && len(f.ProductTypes) == 0 && len(f.Streets) == 0 &&
		len(f.CylinderTypes) == 0 && len(f.PaymentMethods) == 0 &&
		len(f.Drivers1) == 0 && len(f.Drivers2) == 0
}

// Apply returns the records matching every constraint. The input slice is
// not modified.
func (f DeliveryFilter) Apply(records []Delivery) []Delivery {
	if f.IsZero() {
		return append([]Delivery(nil), records...)
	}
	out := make([]Delivery, 0, len(records))
	customers := toSet(f.Customers)
	products := toSet(f.ProductTypes)
	streets := toSet(f.Streets)
	cylinders := toSet(f.CylinderTypes)
	methods := toSet(f.PaymentMethods)
	drivers1 := toSet(f.Drivers1)
	drivers2 := toSet(f.Drivers2)

	for _, r := range records {
		if f.From != nil || f.To != nil {
			d, err := r.CalendarDate()
			if err != nil {
				continue
			}
			if f.From != nil && d.Before(*f.From) {
				continue
			}
			if f.To != nil && d.After(*f.To) {
				continue
			}
		}
		if !customers.match(r.Customer) ||
			!products.match(r.ProductType) ||
			!streets.match(r.Street) ||
			!cylinders.match(r.CylinderType) ||
			!methods.match(r.PaymentMethod) ||
			!drivers1.match(r.Driver1) ||
			!drivers2.match(r.Driver2) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options collects distinct values per filterable field in order of first
// appearance. Blank values are skipped.
func Options(records []Delivery) FilterOptions {
	var (
		opts FilterOptions
		seen = map[string]map[string]struct{}{}
	)
	add := func(field string, dst *[]string, v string) {
		if v == "" {
			return
		}
		s, ok := seen[field]
		if !ok {
			s = map[string]struct{}{}
			seen[field] = s
		}
		if _, dup := s[v]; dup {
			return
		}
		s[v] = struct{}{}
		*dst = append(*dst, v)
	}
	for _, r := range records {
		add("customer", &opts.Customers, r.Customer)
		add("product", &opts.ProductTypes, r.ProductType)
		add("street", &opts.Streets, r.Street)
		add("cylinder", &opts.CylinderTypes, r.CylinderType)
		add("method", &opts.PaymentMethods, r.PaymentMethod)
		add("driver1", &opts.Drivers1, r.Driver1)
		add("driver2", &opts.Drivers2, r.Driver2)
	}
	return opts
}

type stringSet map[string]struct{}

func toSet(values []string) stringSet {
	if len(values) == 0 {
		return nil
	}
	s := make(stringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// match is true for an empty set.
func (s stringSet) match(v string) bool {
	if s == nil {
		return true
	}
	_, ok := s[v]
	return ok
}

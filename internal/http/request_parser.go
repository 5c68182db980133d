// Package http serves the delivery dashboard, attendance, pricing and
// inventory operations as a JSON API.
//
// This file turns path and query parameters into domain values.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/text/unicode/norm"

	"gasdash/internal/core"
	"gasdash/internal/report"
)

// ErrBadRequest marks malformed parameters or bodies.
var ErrBadRequest = errors.New("bad request")

const maxBodyBytes = 1 << 20

// Query parameter names accepted by the delivery endpoints. List
// parameters may be repeated.
const (
	ParamPeriod   = "period"
	ParamFrom     = "from"
	ParamTo       = "to"
	ParamCustomer = "customer"
	ParamProduct  = "product"
	ParamStreet   = "street"
	ParamCylinder = "cylinder"
	ParamPayment  = "payment"
	ParamDriver1  = "driver1"
	ParamDriver2  = "driver2"
)

// ParseGranularity reads the period parameter. Missing means day; an
// unknown value is an error, never a silent default.
func ParseGranularity(query url.Values) (report.Granularity, error) {
	raw := strings.TrimSpace(query.Get(ParamPeriod))
	if raw == "" {
		return report.Day, nil
	}
	return report.ParseGranularity(raw)
}

// ParseDeliveryFilter builds a filter from the query string. Dates accept
// ISO (2024-01-31) or sheet style (31/01/2024) values.
func ParseDeliveryFilter(query url.Values) (core.DeliveryFilter, error) {
	f := core.DeliveryFilter{
		Customers:      values(query, ParamCustomer),
		ProductTypes:   values(query, ParamProduct),
		Streets:        values(query, ParamStreet),
		CylinderTypes:  values(query, ParamCylinder),
		PaymentMethods: values(query, ParamPayment),
		Drivers1:       values(query, ParamDriver1),
		Drivers2:       values(query, ParamDriver2),
	}
	var err error
	if f.From, err = optionalDate(query, ParamFrom); err != nil {
		return core.DeliveryFilter{}, err
	}
	if f.To, err = optionalDate(query, ParamTo); err != nil {
		return core.DeliveryFilter{}, err
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return core.DeliveryFilter{}, fmt.Errorf("%w: %s is before %s", ErrBadRequest, ParamTo, ParamFrom)
	}
	return f, nil
}

func values(query url.Values, key string) []string {
	var out []string
	for _, v := range query[key] {
		if v = sanitizeInput(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func optionalDate(query url.Values, key string) (*civil.Date, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadRequest, key, err)
	}
	return &d, nil
}

// ParseVehicle reads the {vehicle} path segment.
func ParseVehicle(r *http.Request) (core.Vehicle, error) {
	return core.ParseVehicle(r.PathValue("vehicle"))
}

// ParseID reads a positive integer path segment.
func ParseID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return id, nil
}

// ParseYearMonth reads the {year} and {month} path segments.
func ParseYearMonth(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("%w: invalid year %q", ErrBadRequest, r.PathValue("year"))
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: invalid month %q", ErrBadRequest, r.PathValue("month"))
	}
	return year, time.Month(month), nil
}

// DecodeJSON reads a single JSON value into dst, rejecting unknown fields
// and bodies over 1 MiB.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrBadRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: body must contain a single JSON value", ErrBadRequest)
	}
	return nil
}

// sanitizeInput removes control characters, trims whitespace and converts
// to NFC, the form sheet cells are stored in.
func sanitizeInput(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

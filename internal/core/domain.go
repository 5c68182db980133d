package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	VehicleMoto  Vehicle = "moto"
	VehicleTruck Vehicle = "truck"
)

type (
	// Vehicle identifies which delivery sheet a record came from.
	Vehicle string

	// Delivery is one row of a delivery sheet. Date is kept as the raw cell
	// text; use CalendarDate to coerce it.
	Delivery struct {
		Vehicle        Vehicle         `json:"vehicle"`
		Date           string          `json:"date"`
		Customer       string          `json:"customer"`
		CustomerCode   string          `json:"customer_code"`
		Street         string          `json:"street,omitempty"`
		ProductType    string          `json:"product_type"`
		CylinderType   string          `json:"cylinder_type,omitempty"`
		Quantity       decimal.Decimal `json:"quantity"`
		ShellsReturned decimal.Decimal `json:"shells_returned"`
		Amount         decimal.Decimal `json:"amount"`
		PaymentMethod  string          `json:"payment_method"`
		Driver1        string          `json:"driver_1,omitempty"`
		Driver2        string          `json:"driver_2,omitempty"`
	}

	Employee struct {
		ID         int64           `json:"id" db:"employee_id"`
		Name       string          `json:"name" db:"employee_name"`
		BaseSalary decimal.Decimal `json:"base_salary" db:"base_salary"`
		Allowance  decimal.Decimal `json:"allowance" db:"allowance"`
		Insurance  decimal.Decimal `json:"insurance" db:"insurance"`
	}

	// AttendanceEntry records how much of a day an employee worked (0..1).
	AttendanceEntry struct {
		EmployeeID   int64      `json:"employee_id"`
		EmployeeName string     `json:"employee_name,omitempty"`
		Date         civil.Date `json:"date"`
		Presence     float64    `json:"presence"`
	}

	Customer struct {
		ID   int64  `json:"id" db:"customer_id"`
		Name string `json:"name" db:"customer_name"`
	}

	Product struct {
		ID   int64  `json:"id" db:"product_id"`
		Name string `json:"name" db:"product_name"`
	}

	// Price is the agreed unit price of a product for one customer.
	Price struct {
		CustomerName string          `json:"customer_name" db:"customer_name"`
		ProductName  string          `json:"product_name" db:"product_name"`
		Price        decimal.Decimal `json:"price" db:"price"`
		LastUpdated  time.Time       `json:"last_updated" db:"last_updated"`
	}

	InventoryLevel struct {
		ProductID   int64     `json:"product_id" db:"product_id"`
		ProductName string    `json:"product_name" db:"product_name"`
		Quantity    int64     `json:"quantity" db:"quantity"`
		LastUpdated time.Time `json:"last_updated" db:"last_updated"`
	}

	// Sale is a delivered quantity of a stocked product, derived from a
	// delivery row. SourceRef identifies the originating row.
	Sale struct {
		ProductID int64
		Quantity  int64
		Date      civil.Date
		Vehicle   Vehicle
		SourceRef string
	}
)

var (
	ErrInvalidVehicle   = errors.New("invalid vehicle")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMeasure   = errors.New("invalid measure")
	ErrInvalidPresence  = errors.New("presence must be between 0 and 1 in steps of 0.25")
	ErrEmptyName        = errors.New("empty name")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrNotFound         = errors.New("not found")
	ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrEmployeeNotFound = fmt.Errorf("employee %w", ErrNotFound)
)

// Vehicles lists the known delivery sheets in display order.
func Vehicles() []Vehicle {
	return []Vehicle{VehicleMoto, VehicleTruck}
}

func ParseVehicle(s string) (Vehicle, error) {
	v := Vehicle(strings.ToLower(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidVehicle, s)
	}
	return v, nil
}

func (v Vehicle) IsValid() bool {
	switch v {
	case VehicleMoto, VehicleTruck:
		return true
	default:
		return false
	}
}

func (v Vehicle) String() string {
	return string(v)
}

// CalendarDate coerces the raw date cell to a calendar date.
func (d Delivery) CalendarDate() (civil.Date, error) {
	return ParseDate(d.Date)
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	for _, v := range []decimal.Decimal{e.BaseSalary, e.Allowance, e.Insurance} {
		if v.IsNegative() {
			return ErrNegativeAmount
		}
	}
	return nil
}

func (a AttendanceEntry) Validate() error {
	if !a.Date.IsValid() {
		return ErrInvalidDate
	}
	return ValidatePresence(a.Presence)
}

// ValidatePresence accepts 0, 0.25, 0.5, 0.75 and 1.
func ValidatePresence(p float64) error {
	if p < 0 || p > 1 {
		return ErrInvalidPresence
	}
	quarters := p * 4
	if quarters != float64(int(quarters)) {
		return ErrInvalidPresence
	}
	return nil
}

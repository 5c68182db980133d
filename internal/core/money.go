// Package core provides the delivery domain model and its parsing helpers.
//
// This file contains functions for parsing numeric spreadsheet cells
// (quantities, payments, prices) and rendering amounts for display.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParseMeasure converts a numeric spreadsheet cell to a decimal.
//
// Empty cells are zero. Comma thousands separators and spaces are removed;
// a value with more than one dot is treated as dot-grouped thousands.
// Negative values are rejected.
//
// Examples:
//
//	ParseMeasure("150,000")   -> 150000
//	ParseMeasure("1.250.000") -> 1250000
//	ParseMeasure("2.5")       -> 2.5
//	ParseMeasure("")          -> 0
func ParseMeasure(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	if strings.Count(s, ".") > 1 {
		s = strings.ReplaceAll(s, ".", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidMeasure, s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %q", ErrInvalidMeasure, s)
	}
	return d, nil
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a rounded amount with thousands separators,
// e.g. 1234567.4 -> "1,234,567".
func FormatAmount(d decimal.Decimal) string {
	return amountPrinter.Sprintf("%d", d.Round(0).IntPart())
}

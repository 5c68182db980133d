package core

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Layouts accepted for delivery dates, tried in order. Day and month may be
// written with or without a leading zero.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2006-01-02",
}

// ParseDate coerces a spreadsheet date cell (dd/mm/yyyy, dd/mm/yy or ISO)
// into a calendar date.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MonthDays returns every date of the given month.
func MonthDays(year int, month time.Month) []civil.Date {
	first := civil.Date{Year: year, Month: month, Day: 1}
	last := LastOfMonth(first)
	days := make([]civil.Date, 0, last.Day)
	for d := first; !d.After(last); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// LastOfMonth returns the last day of d's month.
func LastOfMonth(d civil.Date) civil.Date {
	return civil.DateOf(time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC))
}

func Weekday(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

func IsSunday(d civil.Date) bool {
	return Weekday(d) == time.Sunday
}

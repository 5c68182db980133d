package report

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// period is the calendar interval a date falls into. Both ends are inclusive.
type period struct {
	start civil.Date
	end   civil.Date
}

// periodOf returns the period of granularity g containing d. g must be valid.
func periodOf(d civil.Date, g Granularity) period {
	switch g {
	case Week:
		// Weeks start on Monday.
		offset := (int(d.In(time.UTC).Weekday()) + 6) % 7
		start := d.AddDays(-offset)
		return period{start: start, end: start.AddDays(6)}
	case Month:
		return monthSpan(d.Year, d.Month, 1)
	case Quarter:
		first := time.Month((int(d.Month)-1)/3*3 + 1)
		return monthSpan(d.Year, first, 3)
	case Year:
		return period{
			start: civil.Date{Year: d.Year, Month: time.January, Day: 1},
			end:   civil.Date{Year: d.Year, Month: time.December, Day: 31},
		}
	default:
		return period{start: d, end: d}
	}
}

// monthSpan covers n whole months starting at the given month.
func monthSpan(year int, first time.Month, n int) period {
	start := civil.Date{Year: year, Month: first, Day: 1}
	end := civil.DateOf(time.Date(year, first+time.Month(n), 0, 0, 0, 0, 0, time.UTC))
	return period{start: start, end: end}
}

// label renders the period for display. Day periods use the ISO date; the
// others use "dd/mm - dd/mm", with the year appended when withYear is set.
func (p period) label(g Granularity, withYear bool) string {
	if g == Day {
		return p.start.String()
	}
	if withYear {
		return fmt.Sprintf("%s - %s", dmy(p.start), dmy(p.end))
	}
	return fmt.Sprintf("%s - %s", dm(p.start), dm(p.end))
}

func dm(d civil.Date) string {
	return fmt.Sprintf("%02d/%02d", d.Day, int(d.Month))
}

func dmy(d civil.Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

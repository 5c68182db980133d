// Package report groups delivery records into calendar periods and sums
// their measures.
package report

import (
	"errors"
	"fmt"
	"strings"
)

// Granularity is the size of a reporting period.
type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

var ErrInvalidGranularity = errors.New("invalid granularity")

// Granularities lists the supported period sizes, smallest first.
func Granularities() []Granularity {
	return []Granularity{Day, Week, Month, Quarter, Year}
}

// ParseGranularity accepts the period names case-insensitively.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if err := g.Validate(); err != nil {
		return "", err
	}
	return g, nil
}

func (g Granularity) Validate() error {
	switch g {
	case Day, Week, Month, Quarter, Year:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidGranularity, string(g))
	}
}

func (g Granularity) String() string {
	return string(g)
}

package backend

import (
	"context"
	"time"

	"gasdash/internal/core"
	"gasdash/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the delivery reader and optional cleanup function
type Result struct {
	Reader  sheets.DeliveryReader
	Cleanup CleanupFunc
}

// Factory creates delivery readers based on configuration
type Factory interface {
	CreateReader(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for reader creation
type Config struct {
	Type SourceType

	// Published CSV
	CSVURLs          map[core.Vehicle][]string
	FetchTimeout     time.Duration
	FetchConcurrency int

	// Google Sheets API
	GoogleSpreadsheetID      string
	GoogleRanges             map[core.Vehicle][]string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory
	DataDirectory string
}

// SourceType selects where delivery rows come from
type SourceType string

const (
	PublishedSource SourceType = "published"
	SheetsSource    SourceType = "sheets"
	MemorySource    SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case PublishedSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}

package backend

import (
	"context"
	"fmt"

	applog "gasdash/internal/log"
	gsheet "gasdash/internal/sheets/google"
	"gasdash/internal/sheets/memory"
	"gasdash/internal/sheets/published"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new reader factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateReader implements Factory.CreateReader
func (f *DefaultFactory) CreateReader(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case PublishedSource:
		return f.createPublishedReader(config)
	case SheetsSource:
		return f.createSheetsReader(ctx, config)
	case MemorySource:
		return f.createMemoryReader(config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

func (f *DefaultFactory) createPublishedReader(config Config) (*Result, error) {
	client := published.New(published.Options{
		URLs:        config.CSVURLs,
		Timeout:     config.FetchTimeout,
		Concurrency: config.FetchConcurrency,
		Logger:      f.logger,
	})

	f.logger.Info("Initialized published CSV source",
		"urls", countURLs(config.CSVURLs),
		"timeout", config.FetchTimeout.String(),
		"concurrency", config.FetchConcurrency)

	return &Result{Reader: client}, nil
}

func (f *DefaultFactory) createSheetsReader(ctx context.Context, config Config) (*Result, error) {
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		Ranges:          config.GoogleRanges,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
		Logger:          f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets source", "ranges", countURLs(config.GoogleRanges))

	return &Result{Reader: client}, nil
}

func (f *DefaultFactory) createMemoryReader(config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery fixtures: %w", err)
	}

	f.logger.Info("Initialized memory source", "data_directory", dataDir)

	return &Result{Reader: store}, nil
}

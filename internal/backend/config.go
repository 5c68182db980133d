package backend

import (
	"fmt"

	"gasdash/internal/config"
	"gasdash/internal/core"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sourceType := SourceType(appConfig.DeliverySource)
	if !sourceType.IsValid() {
		return Config{}, fmt.Errorf("invalid delivery source in config: %s", appConfig.DeliverySource)
	}

	return Config{
		Type: sourceType,

		CSVURLs: map[core.Vehicle][]string{
			core.VehicleMoto:  appConfig.MotoCSVURLs,
			core.VehicleTruck: appConfig.TruckCSVURLs,
		},
		FetchTimeout:     appConfig.FetchTimeout,
		FetchConcurrency: appConfig.FetchConcurrency,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleRanges: map[core.Vehicle][]string{
			core.VehicleMoto:  appConfig.GoogleMotoRanges,
			core.VehicleTruck: appConfig.GoogleTruckRanges,
		},
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,

		DataDirectory: appConfig.DataDir,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid source type: %s", c.Type)
	}

	switch c.Type {
	case PublishedSource:
		if countURLs(c.CSVURLs) == 0 {
			return fmt.Errorf("at least one CSV URL is required for published source")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
		if countURLs(c.GoogleRanges) == 0 {
			return fmt.Errorf("at least one range is required for sheets source")
		}
	case MemorySource:
		// DataDirectory defaults to "data" if empty
	}

	return nil
}

// SourceTypes returns all valid source types
func SourceTypes() []SourceType {
	return []SourceType{PublishedSource, SheetsSource, MemorySource}
}

func countURLs(m map[core.Vehicle][]string) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}

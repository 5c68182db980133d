package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Delivery sources.
const (
	SourcePublished = "published"
	SourceSheets    = "sheets"
	SourceMemory    = "memory"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Database
	SQLiteDBPath string

	// Delivery sheets
	DeliverySource   string
	MotoCSVURLs      []string
	TruckCSVURLs     []string
	FetchTimeout     time.Duration
	FetchConcurrency int
	DataDir          string
	CacheTTL         time.Duration

	// Google Sheets API
	GoogleSpreadsheetID      string
	GoogleMotoRanges         []string
	GoogleTruckRanges        []string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AMQP, optional: an empty URL runs sales imports inline
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Worker
	ImportInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gasdash.db"),

		DeliverySource:   getEnv("DELIVERY_SOURCE", SourceMemory),
		MotoCSVURLs:      getEnvList("MOTO_CSV_URLS"),
		TruckCSVURLs:     getEnvList("TRUCK_CSV_URLS"),
		FetchTimeout:     getEnvDuration("FETCH_TIMEOUT", 20*time.Second),
		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 4),
		DataDir:          getEnv("DATA_DIR", "./data"),
		CacheTTL:         getEnvDuration("CACHE_TTL", 0),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleMotoRanges:         getEnvList("GOOGLE_MOTO_RANGES"),
		GoogleTruckRanges:        getEnvList("GOOGLE_TRUCK_RANGES"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gasdash"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sales_import"),

		ImportInterval: getEnvDuration("IMPORT_INTERVAL", 0),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	switch c.DeliverySource {
	case SourcePublished:
		if len(c.MotoCSVURLs) == 0 && len(c.TruckCSVURLs) == 0 {
			errors = append(errors, "MOTO_CSV_URLS or TRUCK_CSV_URLS is required when using published source")
		}
		for _, raw := range append(append([]string{}, c.MotoCSVURLs...), c.TruckCSVURLs...) {
			if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				errors = append(errors, fmt.Sprintf("invalid CSV URL '%s': must be http or https", raw))
			}
		}
		if c.FetchTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be positive", c.FetchTimeout))
		}
		if c.FetchConcurrency < 1 || c.FetchConcurrency > 32 {
			errors = append(errors, fmt.Sprintf("invalid fetch concurrency %d: must be between 1 and 32", c.FetchConcurrency))
		}
	case SourceSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if len(c.GoogleMotoRanges) == 0 && len(c.GoogleTruckRanges) == 0 {
			errors = append(errors, "GOOGLE_MOTO_RANGES or GOOGLE_TRUCK_RANGES is required when using sheets source")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	case SourceMemory:
	default:
		errors = append(errors, fmt.Sprintf("invalid delivery source '%s': must be one of %v", c.DeliverySource, Sources()))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.ImportInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid import interval %v: must not be negative", c.ImportInterval))
	} else if c.ImportInterval > 0 && c.ImportInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid import interval %v: must be at least 1 minute", c.ImportInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Sources lists the valid DELIVERY_SOURCE values.
func Sources() []string {
	return []string{SourcePublished, SourceSheets, SourceMemory}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blank items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

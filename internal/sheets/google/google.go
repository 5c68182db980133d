// Package google reads delivery sheets through the Google Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
	ports "gasdash/internal/sheets"
)

var (
	ErrMissingSpreadsheet = errors.New("missing spreadsheet id")
	ErrMissingCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	ErrNoRanges           = errors.New("no ranges configured")
)

// Options configures a Client. Each vehicle maps to one or more A1 ranges
// (e.g. "Moto T1!A:K"); the first row of every range is its header.
type Options struct {
	SpreadsheetID   string
	Ranges          map[core.Vehicle][]string
	CredentialsJSON string
	CredentialsFile string
	Logger          *applog.Logger
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ranges        map[core.Vehicle][]string
	logger        *applog.Logger
}

var _ ports.DeliveryReader = (*Client)(nil)

// New creates a Sheets client authenticated with a service account. Extra
// client options are appended after the credentials.
func New(ctx context.Context, opts Options, extra ...goption.ClientOption) (*Client, error) {
	id := strings.TrimSpace(opts.SpreadsheetID)
	if id == "" {
		return nil, ErrMissingSpreadsheet
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	clientOpts := extra
	if len(extra) == 0 {
		creds, err := loadCredentials(opts)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
		}
	}
	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", id)
	return &Client{svc: svc, spreadsheetID: id, ranges: opts.Ranges, logger: logger}, nil
}

// loadCredentials prefers inline JSON, then a file path, then the standard
// GOOGLE_APPLICATION_CREDENTIALS variable.
func loadCredentials(opts Options) ([]byte, error) {
	if js := strings.TrimSpace(opts.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(opts.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, ErrMissingCredentials
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// ReadDeliveries reads every configured range of the vehicle in one
// batch request and merges the rows, most recent first.
func (c *Client) ReadDeliveries(ctx context.Context, vehicle core.Vehicle) ([]core.Delivery, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	ranges := c.ranges[vehicle]
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoRanges, vehicle)
	}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s ranges: %w", vehicle, err)
	}

	var out []core.Delivery
	for _, vr := range resp.ValueRanges {
		rows, skipped, err := ports.ParseRows(vehicle, toMatrix(vr.Values))
		if err != nil {
			return nil, fmt.Errorf("range %s: %w", vr.Range, err)
		}
		for _, s := range skipped {
			c.logger.WarnContext(ctx, "Skipping malformed row",
				applog.FieldRange, vr.Range, applog.FieldError, s.Error())
		}
		out = append(out, rows...)
	}
	ports.SortByDateDesc(out)
	c.logger.DebugContext(ctx, "Loaded deliveries",
		applog.FieldVehicle, vehicle.String(),
		applog.FieldRecords, len(out),
		applog.FieldSource, "sheets")
	return out, nil
}

func toMatrix(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = toStrings(row)
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

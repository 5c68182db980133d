// Package published reads delivery sheets published to the web as CSV.
package published

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"gasdash/internal/core"
	applog "gasdash/internal/log"
	ports "gasdash/internal/sheets"
)

var ErrNoSources = errors.New("no CSV sources configured")

// Options configures a Client.
type Options struct {
	URLs        map[core.Vehicle][]string
	Timeout     time.Duration
	Concurrency int
	HTTPClient  *http.Client
	Logger      *applog.Logger
}

// Client fetches every URL of a vehicle concurrently and merges the rows.
type Client struct {
	urls        map[core.Vehicle][]string
	http        *http.Client
	timeout     time.Duration
	concurrency int
	logger      *applog.Logger
}

var _ ports.DeliveryReader = (*Client)(nil)

func New(opts Options) *Client {
	c := &Client{
		urls:        opts.URLs,
		http:        opts.HTTPClient,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = 20 * time.Second
	}
	if c.concurrency <= 0 {
		c.concurrency = 4
	}
	if c.logger == nil {
		c.logger = applog.Discard()
	}
	c.logger = c.logger.WithComponent(applog.ComponentSheets)
	return c
}

// ReadDeliveries downloads every sheet of the vehicle. A failing URL is
// logged and skipped; the call fails only when every URL fails. The result
// is sorted most recent first.
func (c *Client) ReadDeliveries(ctx context.Context, vehicle core.Vehicle) ([]core.Delivery, error) {
	urls := c.urls[vehicle]
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoSources, vehicle)
	}

	results := make([][]core.Delivery, len(urls))
	failures := make([]error, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			rows, err := c.fetch(gctx, url)
			if err == nil {
				var skipped []ports.RowError
				results[i], skipped, err = ports.ParseRows(vehicle, rows)
				for _, s := range skipped {
					c.logger.WarnContext(ctx, "Skipping malformed row",
						applog.FieldURL, url, applog.FieldError, s.Error())
				}
			}
			if err != nil {
				failures[i] = err
				c.logger.WarnContext(ctx, "Failed to load sheet",
					applog.FieldVehicle, vehicle.String(),
					applog.FieldURL, url,
					applog.FieldError, err)
			}
			// Per-URL failures are tolerated; only cancellation stops the group.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []core.Delivery
	loaded := 0
	for i := range urls {
		if failures[i] != nil {
			continue
		}
		loaded++
		out = append(out, results[i]...)
	}
	if loaded == 0 {
		return nil, fmt.Errorf("load %s deliveries: %w", vehicle, errors.Join(failures...))
	}
	ports.SortByDateDesc(out)
	c.logger.DebugContext(ctx, "Loaded deliveries",
		applog.FieldVehicle, vehicle.String(),
		applog.FieldRecords, len(out),
		applog.FieldSource, "published")
	return out, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: unexpected status %d", url, resp.StatusCode)
	}
	return ports.ReadCSV(resp.Body)
}

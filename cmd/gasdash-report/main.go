// Command gasdash-report prints the delivery report of one vehicle to the
// terminal, using the same sources and aggregation as the dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"

	"gasdash/internal/cli"
	"gasdash/internal/core"
	applog "gasdash/internal/log"
	"gasdash/internal/report"
	"gasdash/internal/services"
)

type options struct {
	vehicle core.Vehicle
	period  report.Granularity
	from    *civil.Date
	to      *civil.Date
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("gasdash-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	vehicle := fs.String("vehicle", "moto", "delivery sheet: moto or truck")
	period := fs.String("period", "month", "grouping: day, week, month, quarter or year")
	from := fs.String("from", "", "first date to include (2024-01-31 or 31/01/2024)")
	to := fs.String("to", "", "last date to include")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	var opts options
	var err error
	if opts.vehicle, err = core.ParseVehicle(*vehicle); err != nil {
		return options{}, err
	}
	if opts.period, err = report.ParseGranularity(*period); err != nil {
		return options{}, err
	}
	for _, d := range []struct {
		raw string
		dst **civil.Date
	}{{*from, &opts.from}, {*to, &opts.to}} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		v, err := core.ParseDate(d.raw)
		if err != nil {
			return options{}, err
		}
		*d.dst = &v
	}
	if opts.from != nil && opts.to != nil && opts.to.Before(*opts.from) {
		return options{}, errors.New("-to is before -from")
	}
	return opts, nil
}

// render writes the dashboard as an aligned table followed by the totals.
func render(w io.Writer, dash services.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tQuantity\tAmount\tPayments\t\n", strings.ToUpper(string(dash.Report.Granularity)))
	for _, b := range dash.Report.Buckets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
			b.Label,
			b.TotalQuantity.String(),
			core.FormatAmount(b.TotalAmount),
			paymentSummary(b.PaymentMethodCounts))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s: %d records, quantity %s, amount %s\n",
		dash.Vehicle, dash.Totals.Records, dash.Totals.Quantity.String(), core.FormatAmount(dash.Totals.Amount))
	if dash.Totals.Undated > 0 {
		fmt.Fprintf(w, "totals include %d records without a readable date that are in no period above\n", dash.Totals.Undated)
	}
	return nil
}

func paymentSummary(counts map[string]int) string {
	methods := make([]string, 0, len(counts))
	for m := range counts {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	parts := make([]string, 0, len(methods))
	for _, m := range methods {
		parts = append(parts, fmt.Sprintf("%s=%d", m, counts[m]))
	}
	return strings.Join(parts, " ")
}

func main() {
	cli.LoadEnvFile()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(os.Getenv("LOG_LEVEL")))
	// Logs go to stderr so the table can be piped.
	logger := applog.New(applog.Config{
		Handler:   slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: applog.ParseLevel(cfg.LogLevel)}),
		Component: applog.ComponentApp,
	})
	cfg.CacheTTL = 0

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reader, _, closeReader := cli.InitDeliveryReader(ctx, logger, cfg)
	defer closeReader()

	dash, err := services.NewDeliveryService(reader, logger).
		Dashboard(ctx, opts.vehicle, core.DeliveryFilter{From: opts.from, To: opts.to}, opts.period)
	if err != nil {
		logger.Error("Report failed", applog.FieldError, err)
		os.Exit(1)
	}
	if err := render(os.Stdout, dash); err != nil {
		logger.Error("Write report", applog.FieldError, err)
		os.Exit(1)
	}
}

// Command report computes reliability indices from an outage workbook and
// prints the selected feeder's current values and trend.
//
// Usage:
//
//	go run ./cmd/report \
//	  -source csv -path data/outages \
//	  -granularity weekly -period "Jan 2024" -feeder "Feeder A" \
//	  -parquet-out out/
//
// Without -period and -feeder it lists the available selections.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	parquetadapter "github.com/couchcryptid/grid-reliability-etl/internal/adapter/parquet"
	"github.com/couchcryptid/grid-reliability-etl/internal/adapter/source"
	"github.com/couchcryptid/grid-reliability-etl/internal/config"
	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/couchcryptid/grid-reliability-etl/internal/observability"
	"github.com/couchcryptid/grid-reliability-etl/internal/pipeline"
)

const (
	exitOK     = 0
	exitError  = 1
	exitNoData = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, observability.NewMetrics())
	stop()
	os.Exit(code)
}

type options struct {
	cfg         config.Config
	granularity string
	period      string
	feeder      string
	parquetOut  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.cfg.SourceKind, "source", config.SourceCSV, "data source: csv, xlsx or sheets")
	fs.StringVar(&o.cfg.SourcePath, "path", "data", "CSV directory or workbook path")
	fs.StringVar(&o.cfg.SheetsSpreadsheetID, "spreadsheet", "", "Google Sheets spreadsheet ID (sheets source)")
	fs.StringVar(&o.cfg.SheetsCredentialsFile, "credentials", "", "service account JSON file (sheets source)")
	fs.DurationVar(&o.cfg.SheetsTimeout, "timeout", 30*time.Second, "source read timeout")
	fs.StringVar(&o.cfg.LogLevel, "log-level", "warn", "log level")
	fs.StringVar(&o.granularity, "granularity", string(domain.Daily), "daily, weekly or monthly")
	fs.StringVar(&o.period, "period", "", "period (worksheet) label")
	fs.StringVar(&o.feeder, "feeder", "", "feeder name")
	fs.StringVar(&o.parquetOut, "parquet-out", "", "directory to export the metrics tables as Parquet")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.cfg.SourceKind == config.SourceSheets && (o.cfg.SheetsSpreadsheetID == "" || o.cfg.SheetsCredentialsFile == "") {
		return nil, errors.New("-spreadsheet and -credentials are required for the sheets source")
	}
	if (o.period == "") != (o.feeder == "") {
		return nil, errors.New("-period and -feeder must be given together")
	}
	return &o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, metrics *observability.Metrics) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "report: %v\n", err)
		}
		return exitError
	}

	g, err := domain.ParseGranularity(o.granularity)
	if err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitError
	}

	logger := observability.NewLoggerTo(stderr, o.cfg.LogLevel, "text")

	src, err := source.Open(ctx, &o.cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitError
	}

	snap, err := pipeline.New(src, logger, metrics).Refresh(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitError
	}

	if o.parquetOut != "" {
		paths, err := parquetadapter.Export(o.parquetOut, snap.Tables)
		if err != nil {
			fmt.Fprintf(stderr, "report: %v\n", err)
			return exitError
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "wrote %s\n", p)
		}
	}

	if o.period == "" {
		printSelections(stdout, snap)
		return exitOK
	}

	feeder := domain.NormalizeFeederName(o.feeder)
	result, err := snap.Tables.Filter(g, o.period, feeder)
	if errors.Is(err, domain.ErrNoMatchingData) {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitNoData
	}
	if err != nil {
		fmt.Fprintf(stderr, "report: %v\n", err)
		return exitError
	}

	printResult(stdout, o.period, feeder, result)
	return exitOK
}

func printSelections(w io.Writer, snap *domain.Snapshot) {
	fmt.Fprintf(w, "Computed at %s from %d records\n", snap.ComputedAt.Format(time.RFC3339), snap.Dataset.Len())
	if len(snap.Stats.EmptyPeriods) > 0 {
		fmt.Fprintf(w, "Skipped empty periods: %v\n", snap.Stats.EmptyPeriods)
	}
	for _, period := range snap.Dataset.PeriodLabels() {
		fmt.Fprintf(w, "\n%s\n", period)
		for _, feeder := range snap.Dataset.FeederNames(period) {
			fmt.Fprintf(w, "  %s\n", feeder)
		}
	}
}

func printResult(w io.Writer, period, feeder string, result domain.QueryResult) {
	cur := result.Current
	fmt.Fprintf(w, "%s / %s (%s)\n", period, feeder, result.Granularity)
	fmt.Fprintf(w, "SAIDI %.3f  SAIFI %.3f  CAIDI %.3f\n\n", cur.SAIDI, cur.SAIFI, cur.CAIDI)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERIOD\tSAIDI\tSAIFI\tCAIDI\tCUSTOMERS\tINTERRUPTIONS")
	for _, row := range result.Trend {
		label := row.SubPeriod
		if label == "" {
			label = row.PeriodLabel
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.0f\t%d\n",
			label, row.SAIDI, row.SAIFI, row.CAIDI, row.Customers, row.Interruptions)
	}
	tw.Flush() //nolint:errcheck // writes to stdout
}

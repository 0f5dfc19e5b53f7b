// Package source selects the outage data source named by the configuration.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/grid-reliability-etl/internal/adapter/csvdir"
	"github.com/couchcryptid/grid-reliability-etl/internal/adapter/sheets"
	"github.com/couchcryptid/grid-reliability-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/grid-reliability-etl/internal/config"
	"github.com/couchcryptid/grid-reliability-etl/internal/pipeline"
	"google.golang.org/api/option"
)

// Open returns the period source for cfg.SourceKind.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.PeriodSource, error) {
	switch cfg.SourceKind {
	case config.SourceCSV:
		return csvdir.NewSource(cfg.SourcePath, logger), nil
	case config.SourceXLSX:
		return xlsx.NewSource(cfg.SourcePath, logger), nil
	case config.SourceSheets:
		src, err := sheets.NewSource(ctx, cfg.SheetsSpreadsheetID, cfg.SheetsTimeout, logger,
			option.WithCredentialsFile(cfg.SheetsCredentialsFile),
			option.WithScopes(sheets.ReadOnlyScope),
		)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
	}
}

// Package sheets reads outage periods from a Google Sheets spreadsheet, one
// worksheet per period.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// ReadOnlyScope is the OAuth scope the source needs.
const ReadOnlyScope = gsheets.SpreadsheetsReadonlyScope

// Source implements pipeline.PeriodSource over one spreadsheet. The client
// is created once and only used for reads.
type Source struct {
	svc           *gsheets.Service
	spreadsheetID string
	timeout       time.Duration
	logger        *slog.Logger
}

// NewSource creates a Sheets client for spreadsheetID. Pass
// option.WithCredentialsFile (or another auth option) to authenticate.
// A positive timeout bounds each ReadPeriods call.
func NewSource(ctx context.Context, spreadsheetID string, timeout time.Duration, logger *slog.Logger, opts ...option.ClientOption) (*Source, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Source{svc: svc, spreadsheetID: spreadsheetID, timeout: timeout, logger: logger}, nil
}

// ReadPeriods lists the worksheets and reads each one's formatted values.
func (s *Source) ReadPeriods(ctx context.Context) ([]domain.RawPeriod, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", s.spreadsheetID, err)
	}

	periods := make([]domain.RawPeriod, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		title := sh.Properties.Title

		vr, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheetRange(title)).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("read worksheet %q: %w", title, err)
		}
		records := domain.RecordsFromGrid(vr.Values)
		s.logger.Debug("worksheet read", "worksheet", title, "rows", len(records))
		periods = append(periods, domain.RawPeriod{Label: title, Records: records})
	}
	return periods, nil
}

// sheetRange quotes a worksheet title as an A1 range covering the whole sheet.
func sheetRange(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

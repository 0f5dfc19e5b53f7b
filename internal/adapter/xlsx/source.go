// Package xlsx reads outage periods from a local Excel workbook, one sheet
// per period.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Source implements pipeline.PeriodSource over an .xlsx workbook. Each sheet
// is a period labelled with the sheet name.
type Source struct {
	path   string
	logger *slog.Logger
}

// NewSource creates a Source for the workbook at path.
func NewSource(path string, logger *slog.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// ReadPeriods opens the workbook and reads every sheet in workbook order.
func (s *Source) ReadPeriods(ctx context.Context) ([]domain.RawPeriod, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	periods := make([]domain.RawPeriod, 0, len(sheets))
	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		records := domain.RecordsFromGrid(toGrid(rows))
		s.logger.Debug("workbook sheet read", "sheet", name, "rows", len(records))
		periods = append(periods, domain.RawPeriod{Label: name, Records: records})
	}
	return periods, nil
}

// toGrid converts raw sheet rows to cells. Raw values carry date cells as
// serial numbers; those in the timestamp columns become time.Time.
func toGrid(rows [][]string) [][]any {
	grid := make([][]any, len(rows))
	timeCols := make(map[int]bool)
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, c := range row {
			cells[j] = c
			if i == 0 {
				switch strings.TrimSpace(c) {
				case domain.ColInterruptionTime, domain.ColRestorationTime:
					timeCols[j] = true
				}
				continue
			}
			if timeCols[j] {
				if t, ok := serialToTime(c); ok {
					cells[j] = t
				}
			}
		}
		grid[i] = cells
	}
	return grid
}

// serialToTime reads an Excel date serial. Text timestamps are left for
// ingestion to parse.
func serialToTime(cell string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t.Round(time.Second), true
}

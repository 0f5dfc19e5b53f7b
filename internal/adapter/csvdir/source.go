// Package csvdir reads outage periods from a directory of CSV exports, one
// file per period.
package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/jszwec/csvutil"
)

// outageRow mirrors the worksheet columns. Every cell is kept as text;
// typing happens during ingestion.
type outageRow struct {
	FeederName       string `csv:"Feeder Name"`
	InterruptionTime string `csv:"Interruption Time"`
	RestorationTime  string `csv:"Restoration Time"`
	CustomerNo       string `csv:"Customer No"`
	FaultCategory    string `csv:"Fault Category"`
}

// Source implements pipeline.PeriodSource over a directory of *.csv files.
// The period label is the file name without its extension.
type Source struct {
	dir    string
	logger *slog.Logger
}

// NewSource creates a Source reading from dir.
func NewSource(dir string, logger *slog.Logger) *Source {
	return &Source{dir: dir, logger: logger}
}

// ReadPeriods reads every CSV file in the directory in name order.
func (s *Source) ReadPeriods(ctx context.Context) ([]domain.RawPeriod, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read csv dir: %w", err)
	}

	var periods []domain.RawPeriod
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ext := filepath.Ext(e.Name())
		if e.IsDir() || !strings.EqualFold(ext, ".csv") {
			continue
		}

		label := strings.TrimSuffix(e.Name(), ext)
		records, err := s.readFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("period %q: %w", label, err)
		}
		s.logger.Debug("csv period read", "period", label, "rows", len(records))
		periods = append(periods, domain.RawPeriod{Label: label, Records: records})
	}
	return periods, nil
}

func (s *Source) readFile(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

// decode reads a CSV stream whose first line is the header. Header names are
// trimmed before matching so " Feeder Name" still maps to its column. Columns
// missing from the header are left out of the records.
func decode(r io.Reader) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	present := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		present[h] = true
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, fmt.Errorf("create csv decoder: %w", err)
	}

	var records []domain.RawRecord
	for {
		var row outageRow
		if err := dec.Decode(&row); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode csv row: %w", err)
		}
		records = append(records, toRecord(row, present))
	}
	return records, nil
}

func toRecord(row outageRow, present map[string]bool) domain.RawRecord {
	rec := make(domain.RawRecord, 5)
	set := func(col, v string) {
		if present[col] {
			rec[col] = v
		}
	}
	set(domain.ColFeederName, row.FeederName)
	set(domain.ColInterruptionTime, row.InterruptionTime)
	set(domain.ColRestorationTime, row.RestorationTime)
	set(domain.ColCustomerNo, row.CustomerNo)
	set(domain.ColFaultCategory, row.FaultCategory)
	return rec
}

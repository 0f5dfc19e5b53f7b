// Package parquet exports metrics tables as Parquet files.
package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/grid-reliability-etl/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// MetricsRecord is the Parquet schema of one metrics row.
type MetricsRecord struct {
	Granularity   string  `parquet:"granularity"`
	FeederName    string  `parquet:"feeder_name"`
	PeriodLabel   string  `parquet:"period_label"`
	SubPeriod     string  `parquet:"sub_period"`
	SAIDI         float64 `parquet:"saidi"`
	SAIFI         float64 `parquet:"saifi"`
	CAIDI         float64 `parquet:"caidi"`
	Customers     float64 `parquet:"customers"`
	Interruptions int64   `parquet:"interruptions"`
}

// Export writes <granularity>.parquet into dir for each table and returns
// the paths written.
func Export(dir string, tables domain.Tables) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	paths := make([]string, 0, len(domain.Granularities))
	for _, g := range domain.Granularities {
		path := filepath.Join(dir, string(g)+".parquet")
		if err := writeTable(path, g, tables.Table(g)); err != nil {
			return paths, fmt.Errorf("export %s table: %w", g, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(path string, g domain.Granularity, rows []domain.MetricsRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := parquet.NewGenericWriter[MetricsRecord](f)
	records := make([]MetricsRecord, len(rows))
	for i, r := range rows {
		records[i] = MetricsRecord{
			Granularity:   string(g),
			FeederName:    r.FeederName,
			PeriodLabel:   r.PeriodLabel,
			SubPeriod:     r.SubPeriod,
			SAIDI:         r.SAIDI,
			SAIFI:         r.SAIFI,
			CAIDI:         r.CAIDI,
			Customers:     r.Customers,
			Interruptions: int64(r.Interruptions),
		}
	}

	if _, err := w.Write(records); err != nil {
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

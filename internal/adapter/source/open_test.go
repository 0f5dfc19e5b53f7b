package source

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/grid-reliability-etl/internal/adapter/csvdir"
	"github.com/couchcryptid/grid-reliability-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/grid-reliability-etl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("csv", func(t *testing.T) {
		src, err := Open(context.Background(), &config.Config{SourceKind: config.SourceCSV, SourcePath: t.TempDir()}, logger)
		require.NoError(t, err)
		assert.IsType(t, &csvdir.Source{}, src)
	})

	t.Run("xlsx", func(t *testing.T) {
		src, err := Open(context.Background(), &config.Config{SourceKind: config.SourceXLSX, SourcePath: "outages.xlsx"}, logger)
		require.NoError(t, err)
		assert.IsType(t, &xlsx.Source{}, src)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(context.Background(), &config.Config{SourceKind: "ftp"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"ftp"`)
	})
}

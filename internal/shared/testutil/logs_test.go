package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureHandler(t *testing.T) {
	t.Run("captures records and attributes", func(t *testing.T) {
		logger, h := NewTestLogger(t)

		logger.Info("rows ingested", slog.Int("rows", 10))
		logger.Error("file skipped", slog.String("file", "datatran2020.csv"))

		require.Len(t, h.Records(), 2)
		r, ok := h.Find("rows")
		require.True(t, ok)
		assert.Equal(t, int64(10), r.Attrs["rows"])
		assert.Len(t, h.RecordsAt(slog.LevelError), 1)
	})

	t.Run("derived loggers share the sink", func(t *testing.T) {
		logger, h := NewTestLogger(t)

		logger.With(slog.String("stage", "clean")).WithGroup("report").Warn("parse failures", slog.Int("mortos", 2))

		r, ok := h.Find("parse failures")
		require.True(t, ok)
		assert.Equal(t, "clean", r.Attrs["stage"])
		assert.Equal(t, int64(2), r.Attrs["report.mortos"])
		AssertLogContains(t, h, slog.LevelWarn, "parse")
		AssertNoErrors(t, h)
	})
}

func TestWriteExtracts(t *testing.T) {
	dir := WriteExtracts(t, true)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(ExtractYears))

	data, err := os.ReadFile(filepath.Join(dir, "datatran2021.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, ExtractHeader, lines[0])
	assert.Contains(t, lines[10], "(null)")
}

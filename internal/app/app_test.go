package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/config"
	apperrors "prfcli/internal/errors"
	"prfcli/internal/exporter"
	"prfcli/internal/infrastructure"
	"prfcli/internal/shared/testutil"
	"prfcli/pkg/contracts/domain"
)

func writeTable(t *testing.T, dir string) string {
	t.Helper()
	table := &domain.CleanedTable{
		Columns: []string{domain.ColumnRoadNumber, domain.ColumnFatalities, domain.ColumnSevereInjuries},
		Records: []domain.Accident{
			{Year: 2020, Fatalities: 1, Severity: 1, RoadNumber: domain.Float(116)},
			{Year: 2021, Fatalities: 0, SevereInjuries: 2, Severity: 2, RoadNumber: domain.Float(40)},
		},
	}
	path := filepath.Join(dir, "df_limpo.csv")
	_, err := exporter.NewCleanedTableWriter(exporter.NewCSVWriter(nil, ',', nil)).Write(path, table)
	require.NoError(t, err)
	return path
}

func testConfig(t *testing.T) (*config.Config, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	cfg.Output.ResultsDir = t.TempDir()
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg, config.NewPaths(cfg)
}

func TestNewApplication(t *testing.T) {
	cfg, paths := testConfig(t)
	writeTable(t, paths.ResultsDir)

	a, err := NewApplication(context.Background(), cfg, paths, "", infrastructure.NewMetrics(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, a.Dashboard.Rows())
	assert.Equal(t, fmt.Sprintf(":%d", cfg.Server.Port), a.Server.Addr)
	assert.Equal(t, cfg.Server.ReadTimeout, a.Server.ReadTimeout)
	assert.NotNil(t, a.Router)
}

func TestNewApplication_MissingTable(t *testing.T) {
	cfg, paths := testConfig(t)

	_, err := NewApplication(context.Background(), cfg, paths, "", nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "df_limpo.csv")
}

func TestApplication_ServeUntilCancelled(t *testing.T) {
	cfg, paths := testConfig(t)
	tablePath := writeTable(t, t.TempDir())
	logger, logs := testutil.NewTestLogger(t)

	a, err := NewApplication(context.Background(), cfg, paths, tablePath, infrastructure.NewMetrics(), logger)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	resp, err := http.Get(base + "/api/years")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"years":[2020,2021]`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get(base + "/health")
	assert.Error(t, err)

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dashboard shutdown complete")
	testutil.AssertNoErrors(t, logs)
	listening, ok := logs.Find("Dashboard listening")
	require.True(t, ok)
	assert.Equal(t, "app", listening.Attrs["component"])
	assert.Equal(t, int64(2), listening.Attrs["rows"])
}

func TestApplication_ServeClosedListener(t *testing.T) {
	cfg, paths := testConfig(t)
	writeTable(t, paths.ResultsDir)

	a, err := NewApplication(context.Background(), cfg, paths, "", nil, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = a.Serve(context.Background(), ln)
	assert.Error(t, err)
}

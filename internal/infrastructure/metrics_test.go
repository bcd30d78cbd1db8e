package infrastructure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/config"
)

func TestMetrics_ObserveStep(t *testing.T) {
	m := NewMetrics()
	m.ObserveStep("ingest", 20*time.Millisecond, nil)
	m.ObserveStep("model", time.Second, errors.New("single class"))

	assert.Equal(t, float64(0), testutil.ToFloat64(m.StepFailures.WithLabelValues("ingest")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StepFailures.WithLabelValues("model")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StepDuration))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RowsIngested.WithLabelValues("2021").Add(10)
	m.RowsSkipped.Add(2)
	m.MarkRunFinished(true, time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `prf_rows_ingested_total{year="2021"} 10`)
	assert.Contains(t, string(content), "prf_rows_skipped_total 2")
	assert.Contains(t, string(content), "prf_last_run_success 1")
}

func TestMetrics_PipelineRecorders(t *testing.T) {
	m := NewMetrics()
	m.ObserveIngest(2020, 7, 1)
	m.ObserveIngest(2020, 3, 0)
	m.ObserveWarnings(map[string]int{"latitude": 2}, 1)
	m.SetModelRows(9, 1)
	m.SetModelScores("logistic_regression", 0.75, 0.7)

	assert.Equal(t, float64(10), testutil.ToFloat64(m.RowsIngested.WithLabelValues("2020")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RowsSkipped))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ParseFailures.WithLabelValues("latitude")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SchemaWarnings))
	assert.Equal(t, float64(9), testutil.ToFloat64(m.RowsModeled))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.ModelAccuracy.WithLabelValues("logistic_regression")))
	assert.Equal(t, 0.7, testutil.ToFloat64(m.CVAccuracy.WithLabelValues("logistic_regression")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(http.MethodGet, http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `prf_http_requests_total{method="GET",status="200"} 1`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStep("x", time.Second, nil)
		m.ObserveRequest("GET", 200, time.Second)
		m.MarkRunFinished(false, time.Now())
		m.ObserveIngest(2021, 10, 1)
		m.ObserveWarnings(map[string]int{"km": 1}, 1)
		m.SetModelRows(10, 0)
		m.SetModelScores("random_forest", 0.9, 0.8)
		assert.NoError(t, m.WriteTextfile("unused"))
	})
}

func TestInitializeTracing(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		wantErr  bool
	}{
		{"none", "none", false},
		{"file", "file", false},
		{"unknown", "otlp", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.TelemetryConfig{
				TraceExporter: tt.exporter,
				TraceFile:     filepath.Join(t.TempDir(), "traces.json"),
			}
			tr, err := InitializeTracing(cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, tr.Tracer)

			_, span := tr.Tracer.Start(context.Background(), "step")
			RecordError(span, errors.New("boom"))
			span.End()
			assert.NoError(t, tr.Shutdown(context.Background()))
		})
	}
}

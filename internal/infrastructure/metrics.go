package infrastructure

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "prf"

// Metrics holds the Prometheus collectors for pipeline runs and the dashboard API.
// Each instance owns its registry so tests and commands never collide.
type Metrics struct {
	Registry *prometheus.Registry

	RowsIngested    *prometheus.CounterVec
	RowsSkipped     prometheus.Counter
	ParseFailures   *prometheus.CounterVec
	SchemaWarnings  prometheus.Counter
	RowsModeled     prometheus.Gauge
	RowsDropped     prometheus.Gauge
	StepDuration    *prometheus.HistogramVec
	StepFailures    *prometheus.CounterVec
	ModelAccuracy   *prometheus.GaugeVec
	CVAccuracy      *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	LastRunSuccess  prometheus.Gauge
	LastRunFinished prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_ingested_total",
			Help:      "Rows read from yearly extracts.",
		}, []string{"year"}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_skipped_total",
			Help:      "Malformed rows skipped during ingestion.",
		}),
		ParseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_failures_total",
			Help:      "Cells that could not be parsed, by column.",
		}, []string{"column"}),
		SchemaWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "schema_warnings_total",
			Help:      "Expected columns missing from a yearly extract.",
		}),
		RowsModeled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_modeled",
			Help:      "Complete rows available to the classifiers.",
		}),
		RowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_dropped_incomplete",
			Help:      "Rows dropped because a feature stayed missing after imputation.",
		}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Pipeline step duration.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"step"}),
		StepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "step_failures_total",
			Help:      "Pipeline step failures.",
		}, []string{"step"}),
		ModelAccuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "model_test_accuracy",
			Help:      "Accuracy on the evaluation partition.",
		}, []string{"model"}),
		CVAccuracy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "model_cv_accuracy_mean",
			Help:      "Mean cross-validation accuracy on the training partition.",
		}, []string{"model"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Dashboard API requests.",
		}, []string{"method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Dashboard API request duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_success",
			Help:      "1 when the last pipeline run completed without fatal errors.",
		}),
		LastRunFinished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last pipeline run finished.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsIngested, m.RowsSkipped, m.ParseFailures, m.SchemaWarnings,
		m.RowsModeled, m.RowsDropped, m.StepDuration, m.StepFailures,
		m.ModelAccuracy, m.CVAccuracy, m.HTTPRequests, m.HTTPDuration,
		m.LastRunSuccess, m.LastRunFinished,
	)
	return m
}

// ObserveStep records a step duration and, when err is set, a failure.
func (m *Metrics) ObserveStep(step string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(step).Observe(d.Seconds())
	if err != nil {
		m.StepFailures.WithLabelValues(step).Inc()
	}
}

// ObserveIngest records the rows read and skipped for one yearly extract.
func (m *Metrics) ObserveIngest(year, rows, skipped int) {
	if m == nil {
		return
	}
	m.RowsIngested.WithLabelValues(strconv.Itoa(year)).Add(float64(rows))
	m.RowsSkipped.Add(float64(skipped))
}

// ObserveWarnings records unparsable cells per column and schema warnings.
func (m *Metrics) ObserveWarnings(parseFailures map[string]int, schemaWarnings int) {
	if m == nil {
		return
	}
	for column, n := range parseFailures {
		m.ParseFailures.WithLabelValues(column).Add(float64(n))
	}
	m.SchemaWarnings.Add(float64(schemaWarnings))
}

// SetModelRows records how many rows reached the classifiers.
func (m *Metrics) SetModelRows(modeled, dropped int) {
	if m == nil {
		return
	}
	m.RowsModeled.Set(float64(modeled))
	m.RowsDropped.Set(float64(dropped))
}

// SetModelScores records the test and mean cross-validation accuracy of a model.
func (m *Metrics) SetModelScores(model string, testAccuracy, cvAccuracy float64) {
	if m == nil {
		return
	}
	m.ModelAccuracy.WithLabelValues(model).Set(testAccuracy)
	m.CVAccuracy.WithLabelValues(model).Set(cvAccuracy)
}

// ObserveRequest records one dashboard API request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

// MarkRunFinished sets the last-run gauges.
func (m *Metrics) MarkRunFinished(success bool, at time.Time) {
	if m == nil {
		return
	}
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunFinished.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

// Handler exposes the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

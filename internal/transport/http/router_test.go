package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/config"
	"prfcli/internal/infrastructure"
	"prfcli/internal/middleware"
	"prfcli/internal/services"
	"prfcli/pkg/contracts/domain"
)

func testRouter(t *testing.T, table *domain.CleanedTable) (http.Handler, *infrastructure.Metrics) {
	t.Helper()
	dashboard := services.NewDashboardService(table, nil)
	metrics := infrastructure.NewMetrics()
	return NewRouter(RouterDeps{
		Dashboard: dashboard,
		Health:    services.NewHealthService(dashboard),
		Metrics:   metrics,
		Server:    config.Default().Server,
	}), metrics
}

func sampleTable() *domain.CleanedTable {
	rec := func(year, deaths, injuries int, road float64) domain.Accident {
		return domain.Accident{
			Year:           year,
			Fatalities:     deaths,
			SevereInjuries: injuries,
			Severity:       deaths + injuries,
			RoadNumber:     domain.Float(road),
			Latitude:       domain.Float(-23.5),
			Longitude:      domain.Float(-46.6),
		}
	}
	return &domain.CleanedTable{
		Columns: []string{domain.ColumnFatalities, domain.ColumnSevereInjuries},
		Records: []domain.Accident{
			rec(2020, 1, 0, 116),
			rec(2021, 2, 1, 40),
			rec(2021, 0, 1, 381),
		},
	}
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestRouter_Endpoints(t *testing.T) {
	router, _ := testRouter(t, sampleTable())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{"health", "/health", http.StatusOK, `"status":"ok"`},
		{"years", "/api/years", http.StatusOK, `"years":[2020,2021]`},
		{"indicators latest", "/api/indicators", http.StatusOK, `"year":2021`},
		{"indicators explicit", "/api/indicators?year=2020", http.StatusOK, `"fatalities":1`},
		{"indicators unknown year", "/api/indicators?year=1999", http.StatusNotFound, `"code":"NOT_FOUND"`},
		{"severity by year", "/api/severity-by-year", http.StatusOK, `"year":2020`},
		{"density", "/api/density?year=2021", http.StatusOK, `"accidents":2`},
		{"density bad cell", "/api/density?cell=100", http.StatusBadRequest, `"status":400`},
		{"ranking", "/api/rankings/roads?year=2021&limit=1", http.StatusOK, `"key":"BR-40"`},
		{"ranking bad limit", "/api/rankings/roads?limit=0", http.StatusBadRequest, `"code":"INVALID_PARAMETER"`},
		{"trailing slash", "/api/years/", http.StatusOK, `"latest":2021`},
		{"unknown route", "/api/nope", http.StatusNotFound, `"type":"/errors/not-found"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_NoData(t *testing.T) {
	router, _ := testRouter(t, nil)

	w := get(router, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)

	w = get(router, "/api/indicators")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"DATA_UNAVAILABLE"`)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _ := testRouter(t, sampleTable())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/years", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router, _ := testRouter(t, sampleTable())

	get(router, "/api/years")
	w := get(router, "/metrics")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prf_http_requests_total")
}

func TestMetricsHandler_Disabled(t *testing.T) {
	w := get(NewMetricsHandler(nil), "/metrics")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "prfcli/internal/errors"
	"prfcli/internal/middleware"
	"prfcli/internal/services"
	"prfcli/internal/statistics"
)

// DashboardServiceInterface is the query surface the dashboard handler needs
type DashboardServiceInterface interface {
	Years(ctx context.Context) []int
	ResolveYear(raw string) (int, error)
	Indicators(ctx context.Context, year int) (*services.Indicators, error)
	SeverityByYear(ctx context.Context) ([]statistics.YearTotal, error)
	Density(ctx context.Context, year int, cell float64) ([]statistics.DensityCell, error)
	TopRoads(ctx context.Context, year, limit int) ([]statistics.Ranked, error)
}

// YearsResponse lists the available years
type YearsResponse struct {
	Years  []int `json:"years"`
	Latest int   `json:"latest,omitempty"`
}

// SeverityResponse holds the yearly totals
type SeverityResponse struct {
	Years []statistics.YearTotal `json:"years"`
}

// DensityResponse holds one year's heatmap cells
type DensityResponse struct {
	Year  int                      `json:"year"`
	Cell  float64                  `json:"cell"`
	Cells []statistics.DensityCell `json:"cells"`
}

// RankingResponse holds one year's road ranking
type RankingResponse struct {
	Year    int                 `json:"year"`
	Limit   int                 `json:"limit"`
	Ranking []statistics.Ranked `json:"ranking"`
}

// DashboardHandler serves the accident dashboard queries
type DashboardHandler struct {
	service DashboardServiceInterface
	logger  *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "dashboard")),
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/years", h.GetYears)
	r.Get("/indicators", h.GetIndicators)
	r.Get("/severity-by-year", h.GetSeverityByYear)
	r.Get("/density", h.GetDensity)
	r.Get("/rankings/roads", h.GetRoadRanking)
	return r
}

// GetYears handles GET /api/years
func (h *DashboardHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years := h.service.Years(r.Context())
	resp := YearsResponse{Years: years}
	if len(years) > 0 {
		resp.Latest = years[len(years)-1]
	}
	render.JSON(w, r, resp)
}

// GetIndicators handles GET /api/indicators?year=
func (h *DashboardHandler) GetIndicators(w http.ResponseWriter, r *http.Request) {
	year, err := h.service.ResolveYear(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ind, err := h.service.Indicators(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, ind)
}

// GetSeverityByYear handles GET /api/severity-by-year
func (h *DashboardHandler) GetSeverityByYear(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.SeverityByYear(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, SeverityResponse{Years: totals})
}

// GetDensity handles GET /api/density?year=&cell=
func (h *DashboardHandler) GetDensity(w http.ResponseWriter, r *http.Request) {
	year, err := h.service.ResolveYear(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	cell := services.DefaultDensityCell
	if raw := strings.TrimSpace(r.URL.Query().Get("cell")); raw != "" {
		cell, err = strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(cell) || math.IsInf(cell, 0) {
			h.writeError(w, r, fmt.Errorf("%w: cell %q is not a number", services.ErrInvalidInput, raw))
			return
		}
	}
	cells, err := h.service.Density(r.Context(), year, cell)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if cells == nil {
		cells = []statistics.DensityCell{}
	}
	render.JSON(w, r, DensityResponse{Year: year, Cell: cell, Cells: cells})
}

// GetRoadRanking handles GET /api/rankings/roads?year=&limit=
func (h *DashboardHandler) GetRoadRanking(w http.ResponseWriter, r *http.Request) {
	year, err := h.service.ResolveYear(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit := services.DefaultRankingLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, fmt.Errorf("%w: limit %q is not an integer", services.ErrInvalidInput, raw))
			return
		}
	}
	ranking, err := h.service.TopRoads(r.Context(), year, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if ranking == nil {
		ranking = []statistics.Ranked{}
	}
	render.JSON(w, r, RankingResponse{Year: year, Limit: limit, Ranking: ranking})
}

// writeError maps a service error onto an API error and renders it as problem JSON
func (h *DashboardHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	detail := err.Error()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "dashboard query failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		detail = apiErr.Message
	}

	p := middleware.ProblemFromStatus(apiErr.StatusCode, detail, middleware.GetRequestID(r.Context()))
	p.Code = apiErr.ErrorCode
	middleware.WriteProblem(w, p)
}

func toAPIError(err error) *apierrors.APIError {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.ErrInvalidParameter
	case errors.Is(err, services.ErrYearNotFound):
		return apierrors.NotFoundError("year")
	case errors.Is(err, services.ErrNoData):
		return apierrors.ErrDataUnavailable
	default:
		return apierrors.ErrInternalServer
	}
}

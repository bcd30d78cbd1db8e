package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"prfcli/internal/dataprocessing"
	"prfcli/internal/statistics"
	"prfcli/pkg/contracts/domain"
)

// Query bounds
const (
	DefaultRankingLimit = statistics.DefaultTopN
	MaxRankingLimit     = 100
	DefaultDensityCell  = 0.5
	MinDensityCell      = 0.01
	MaxDensityCell      = 10.0
)

// Indicators are the headline totals of one year
type Indicators struct {
	Year           int     `json:"year"`
	Accidents      int     `json:"accidents"`
	Fatalities     int     `json:"fatalities"`
	SevereInjuries int     `json:"severe_injuries"`
	Severity       int     `json:"severity"`
	MeanSeverity   float64 `json:"mean_severity"`
	WithDeaths     int     `json:"with_deaths"`
	WithoutDeaths  int     `json:"without_deaths"`
}

// DashboardService answers dashboard queries from a cleaned table
type DashboardService struct {
	table  *domain.CleanedTable
	years  []int
	byYear map[int]*domain.CleanedTable
	logger *slog.Logger
}

// NewDashboardService indexes table by year. The table must not be modified afterwards.
func NewDashboardService(table *domain.CleanedTable, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if table == nil {
		table = &domain.CleanedTable{}
	}
	s := &DashboardService{
		table:  table,
		years:  table.Years(),
		byYear: make(map[int]*domain.CleanedTable),
		logger: logger.With(slog.String("service", "dashboard")),
	}
	for _, y := range s.years {
		s.byYear[y] = table.FilterYear(y)
	}
	s.logger.Info("dashboard data indexed",
		slog.Int("rows", table.Len()),
		slog.Int("years", len(s.years)))
	return s
}

// LoadDashboardService reads a cleaned table checkpoint and indexes it
func LoadDashboardService(ctx context.Context, path string, delimiter rune, logger *slog.Logger) (*DashboardService, error) {
	table, err := dataprocessing.LoadCleanedTable(ctx, path, delimiter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard data: %w", err)
	}
	return NewDashboardService(table, logger), nil
}

// Rows returns the number of loaded accidents
func (s *DashboardService) Rows() int {
	return s.table.Len()
}

// Years returns the available years, ascending
func (s *DashboardService) Years(ctx context.Context) []int {
	return append([]int(nil), s.years...)
}

// ResolveYear parses a year parameter. Empty selects the latest year.
func (s *DashboardService) ResolveYear(raw string) (int, error) {
	if len(s.years) == 0 {
		return 0, ErrNoData
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.years[len(s.years)-1], nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q is not a number", ErrInvalidInput, raw)
	}
	if _, ok := s.byYear[year]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}
	return year, nil
}

func (s *DashboardService) view(year int) (*domain.CleanedTable, error) {
	if len(s.years) == 0 {
		return nil, ErrNoData
	}
	t, ok := s.byYear[year]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrYearNotFound, year)
	}
	return t, nil
}

// Indicators returns the totals of one year
func (s *DashboardService) Indicators(ctx context.Context, year int) (*Indicators, error) {
	t, err := s.view(year)
	if err != nil {
		return nil, err
	}
	totals := statistics.Totals(t)
	share := statistics.Fatalities(t)
	ind := &Indicators{
		Year:           year,
		Accidents:      totals.Accidents,
		Fatalities:     totals.Fatalities,
		SevereInjuries: totals.SevereInjuries,
		Severity:       totals.Severity,
		WithDeaths:     share.WithDeaths,
		WithoutDeaths:  share.WithoutDeaths,
	}
	if totals.Accidents > 0 {
		ind.MeanSeverity = float64(totals.Severity) / float64(totals.Accidents)
	}
	return ind, nil
}

// SeverityByYear returns the yearly totals of every year
func (s *DashboardService) SeverityByYear(ctx context.Context) ([]statistics.YearTotal, error) {
	if len(s.years) == 0 {
		return nil, ErrNoData
	}
	return statistics.YearlyTotals(s.table), nil
}

// Density bins one year's accidents with coordinates into cells of the given size in degrees
func (s *DashboardService) Density(ctx context.Context, year int, cell float64) ([]statistics.DensityCell, error) {
	if cell < MinDensityCell || cell > MaxDensityCell {
		return nil, fmt.Errorf("%w: cell must be within [%g, %g]", ErrInvalidInput, MinDensityCell, MaxDensityCell)
	}
	t, err := s.view(year)
	if err != nil {
		return nil, err
	}
	return statistics.Density(t, cell), nil
}

// TopRoads ranks one year's roads by summed severity
func (s *DashboardService) TopRoads(ctx context.Context, year, limit int) ([]statistics.Ranked, error) {
	if limit < 1 || limit > MaxRankingLimit {
		return nil, fmt.Errorf("%w: limit must be within [1, %d]", ErrInvalidInput, MaxRankingLimit)
	}
	t, err := s.view(year)
	if err != nil {
		return nil, err
	}
	return statistics.TopBySeverity(t, statistics.RoadKey, limit), nil
}

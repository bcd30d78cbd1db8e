package statistics

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"prfcli/pkg/contracts/domain"
)

// YearTotal sums one year of accidents
type YearTotal struct {
	Year           int `json:"year"`
	Accidents      int `json:"accidents"`
	Fatalities     int `json:"fatalities"`
	SevereInjuries int `json:"severe_injuries"`
	Severity       int `json:"severity"`
}

// MonthlyPoint is the total severity of one calendar month
type MonthlyPoint struct {
	Year     int `json:"year"`
	Month    int `json:"month"`
	Severity int `json:"severity"`
}

// Ranked is one entry of a top-N ranking
type Ranked struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
}

// FiveNumber summarizes a distribution
type FiveNumber struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// FatalityShare splits accidents by whether anyone died
type FatalityShare struct {
	WithDeaths    int `json:"with_deaths"`
	WithoutDeaths int `json:"without_deaths"`
}

// Exploratory bundles the descriptive aggregates of a cleaned table
type Exploratory struct {
	Yearly            []YearTotal    `json:"yearly"`
	Monthly           []MonthlyPoint `json:"monthly"`
	FatalityShare     FatalityShare  `json:"fatality_share"`
	WeekendSeverity   FiveNumber     `json:"weekend_severity"`
	WeekdaySeverity   FiveNumber     `json:"weekday_severity"`
	TopRoads          []Ranked       `json:"top_roads"`
	TopMunicipalities []Ranked       `json:"top_municipalities"`
	TopTypes          []Ranked       `json:"top_types"`
	TopCauses         []Ranked       `json:"top_causes"`
}

// DefaultTopN is the ranking length used by reports
const DefaultTopN = 10

// Explore computes every descriptive aggregate of the table.
func Explore(table *domain.CleanedTable, topN int) *Exploratory {
	var weekend, weekday []float64
	for _, a := range table.Records {
		if !a.IsWeekend.Valid {
			continue
		}
		if a.IsWeekend.Value {
			weekend = append(weekend, float64(a.Severity))
		} else {
			weekday = append(weekday, float64(a.Severity))
		}
	}

	return &Exploratory{
		Yearly:            YearlyTotals(table),
		Monthly:           MonthlySeverity(table),
		FatalityShare:     Fatalities(table),
		WeekendSeverity:   Summarize(weekend),
		WeekdaySeverity:   Summarize(weekday),
		TopRoads:          TopBySeverity(table, RoadKey, topN),
		TopMunicipalities: TopBySeverity(table, FieldKey(domain.ColumnMunicipality), topN),
		TopTypes:          TopByCount(table, FieldKey(domain.ColumnAccidentType), topN),
		TopCauses:         TopByCount(table, FieldKey(domain.ColumnCause), topN),
	}
}

// YearlyTotals aggregates accidents, deaths, severe injuries and severity per year.
func YearlyTotals(table *domain.CleanedTable) []YearTotal {
	byYear := make(map[int]*YearTotal)
	for _, a := range table.Records {
		t, ok := byYear[a.Year]
		if !ok {
			t = &YearTotal{Year: a.Year}
			byYear[a.Year] = t
		}
		t.Accidents++
		t.Fatalities += a.Fatalities
		t.SevereInjuries += a.SevereInjuries
		t.Severity += a.Severity
	}
	out := make([]YearTotal, 0, len(byYear))
	for _, t := range byYear {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Totals sums a whole table into a single YearTotal with Year left zero.
func Totals(table *domain.CleanedTable) YearTotal {
	var t YearTotal
	for _, a := range table.Records {
		t.Accidents++
		t.Fatalities += a.Fatalities
		t.SevereInjuries += a.SevereInjuries
		t.Severity += a.Severity
	}
	return t
}

// MonthlySeverity sums severity by (year, month); rows without a date are skipped.
func MonthlySeverity(table *domain.CleanedTable) []MonthlyPoint {
	type key struct{ y, m int }
	sums := make(map[key]int)
	for _, a := range table.Records {
		if !a.Month.Valid {
			continue
		}
		sums[key{a.Year, a.Month.Value}] += a.Severity
	}
	out := make([]MonthlyPoint, 0, len(sums))
	for k, v := range sums {
		out = append(out, MonthlyPoint{Year: k.y, Month: k.m, Severity: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Fatalities counts accidents with and without deaths.
func Fatalities(table *domain.CleanedTable) FatalityShare {
	var s FatalityShare
	for _, a := range table.Records {
		if a.Fatalities > 0 {
			s.WithDeaths++
		} else {
			s.WithoutDeaths++
		}
	}
	return s
}

// Summarize returns count, mean and the five-number summary of values.
func Summarize(values []float64) FiveNumber {
	if len(values) == 0 {
		return FiveNumber{Mean: math.NaN(), Min: math.NaN(), Q1: math.NaN(), Median: math.NaN(), Q3: math.NaN(), Max: math.NaN()}
	}
	x := append([]float64(nil), values...)
	sort.Float64s(x)
	return FiveNumber{
		Count:  len(x),
		Mean:   stat.Mean(x, nil),
		Min:    x[0],
		Q1:     stat.Quantile(0.25, stat.Empirical, x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, x, nil),
		Max:    x[len(x)-1],
	}
}

// KeyFunc extracts a grouping key; ok is false for rows to ignore
type KeyFunc func(a domain.Accident) (key string, ok bool)

// FieldKey groups by a pass-through text column, ignoring blanks.
func FieldKey(column string) KeyFunc {
	return func(a domain.Accident) (string, bool) {
		v := strings.TrimSpace(a.Field(column))
		return v, v != ""
	}
}

// RoadKey groups by federal road number, e.g. "BR-116".
func RoadKey(a domain.Accident) (string, bool) {
	if !a.RoadNumber.Valid {
		return "", false
	}
	return "BR-" + strconv.FormatFloat(a.RoadNumber.Value, 'f', -1, 64), true
}

// TopBySeverity ranks keys by summed severity, descending, ties by key.
func TopBySeverity(table *domain.CleanedTable, key KeyFunc, n int) []Ranked {
	return rank(table, key, n, func(a domain.Accident) int { return a.Severity })
}

// TopByCount ranks keys by number of accidents, descending, ties by key.
func TopByCount(table *domain.CleanedTable, key KeyFunc, n int) []Ranked {
	return rank(table, key, n, func(domain.Accident) int { return 1 })
}

func rank(table *domain.CleanedTable, key KeyFunc, n int, weight func(domain.Accident) int) []Ranked {
	sums := make(map[string]int)
	for _, a := range table.Records {
		k, ok := key(a)
		if !ok {
			continue
		}
		sums[k] += weight(a)
	}
	out := make([]Ranked, 0, len(sums))
	for k, v := range sums {
		out = append(out, Ranked{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DensityCell aggregates the accidents inside one lat/lon grid cell
type DensityCell struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accidents int     `json:"accidents"`
	Severity  int     `json:"severity"`
}

// Density bins accidents with coordinates into square cells of the given
// size in degrees; each cell is reported at its centre.
func Density(table *domain.CleanedTable, cell float64) []DensityCell {
	if cell <= 0 {
		return nil
	}
	type key struct{ i, j int64 }
	cells := make(map[key]*DensityCell)
	for _, a := range table.Records {
		if !a.HasCoordinates() {
			continue
		}
		k := key{int64(math.Floor(a.Latitude.Value / cell)), int64(math.Floor(a.Longitude.Value / cell))}
		c, ok := cells[k]
		if !ok {
			c = &DensityCell{
				Latitude:  (float64(k.i) + 0.5) * cell,
				Longitude: (float64(k.j) + 0.5) * cell,
			}
			cells[k] = c
		}
		c.Accidents++
		c.Severity += a.Severity
	}
	out := make([]DensityCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accidents != out[j].Accidents {
			return out[i].Accidents > out[j].Accidents
		}
		if out[i].Latitude != out[j].Latitude {
			return out[i].Latitude < out[j].Latitude
		}
		return out[i].Longitude < out[j].Longitude
	})
	return out
}

// CountColumns extracts the fatality, severe-injury and severity columns.
func CountColumns(table *domain.CleanedTable) map[string][]float64 {
	cols := map[string][]float64{
		domain.ColumnFatalities:     make([]float64, 0, table.Len()),
		domain.ColumnSevereInjuries: make([]float64, 0, table.Len()),
		domain.ColumnSeverity:       make([]float64, 0, table.Len()),
	}
	for _, a := range table.Records {
		cols[domain.ColumnFatalities] = append(cols[domain.ColumnFatalities], float64(a.Fatalities))
		cols[domain.ColumnSevereInjuries] = append(cols[domain.ColumnSevereInjuries], float64(a.SevereInjuries))
		cols[domain.ColumnSeverity] = append(cols[domain.ColumnSeverity], float64(a.Severity))
	}
	return cols
}

// CountColumnOrder is the order used in reports
var CountColumnOrder = []string{domain.ColumnFatalities, domain.ColumnSevereInjuries, domain.ColumnSeverity}

// WeekendFatalities splits the fatality counts by the weekend flag; rows
// without a known weekday are excluded.
func WeekendFatalities(table *domain.CleanedTable) (weekend, weekday []float64) {
	for _, a := range table.Records {
		if !a.IsWeekend.Valid {
			continue
		}
		if a.IsWeekend.Value {
			weekend = append(weekend, float64(a.Fatalities))
		} else {
			weekday = append(weekday, float64(a.Fatalities))
		}
	}
	return weekend, weekday
}

package exporter

import (
	"math"
	"strconv"
	"time"

	"prfcli/pkg/contracts/domain"
)

// CleanedDateLayout is the date format of the cleaned table
const CleanedDateLayout = "2006-01-02"

// formatFloat writes the shortest '.'-decimal representation
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatNullFloat(v domain.NullFloat) string {
	if !v.Valid || math.IsNaN(v.Value) {
		return ""
	}
	return formatFloat(v.Value)
}

func formatNullInt(v domain.NullInt) string {
	if !v.Valid {
		return ""
	}
	return strconv.Itoa(v.Value)
}

func formatNullBool(v domain.NullBool) string {
	if !v.Valid {
		return ""
	}
	return formatBool(v.Value)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(CleanedDateLayout)
}

// formatScore renders a metric with three decimals, NaN as "n/a"
func formatScore(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}

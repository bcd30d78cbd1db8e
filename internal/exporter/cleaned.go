package exporter

import (
	"log/slog"
	"strconv"

	"prfcli/pkg/contracts/domain"
)

// CleanedTableWriter exports the cleaned accident table as CSV.
type CleanedTableWriter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewCleanedTableWriter creates a writer on top of w
func NewCleanedTableWriter(w *CSVWriter) *CleanedTableWriter {
	return &CleanedTableWriter{csv: w, logger: w.logger}
}

// CleanedHeader returns the export header: the pass-through columns in their
// original order followed by the derived columns. A source column sharing a
// derived column's name is replaced by the derived value.
func CleanedHeader(table *domain.CleanedTable) []string {
	derived := make(map[string]bool, len(domain.DerivedColumns))
	for _, c := range domain.DerivedColumns {
		derived[c] = true
	}
	header := make([]string, 0, len(table.Columns)+len(domain.DerivedColumns))
	for _, c := range table.Columns {
		if !derived[c] {
			header = append(header, c)
		}
	}
	return append(header, domain.DerivedColumns...)
}

// CleanedRow renders one record in header order.
func CleanedRow(header []string, a domain.Accident) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = cleanedValue(col, a)
	}
	return row
}

func cleanedValue(column string, a domain.Accident) string {
	switch column {
	case domain.ColumnFatalities:
		return strconv.Itoa(a.Fatalities)
	case domain.ColumnSevereInjuries:
		return strconv.Itoa(a.SevereInjuries)
	case domain.ColumnLatitude:
		return formatNullFloat(a.Latitude)
	case domain.ColumnLongitude:
		return formatNullFloat(a.Longitude)
	case domain.ColumnKilometre:
		return formatNullFloat(a.Kilometre)
	case domain.ColumnRoadNumber:
		return formatNullFloat(a.RoadNumber)
	case domain.ColumnDate:
		return formatDate(a.Date)
	case domain.ColumnYear:
		return strconv.Itoa(a.Year)
	case domain.ColumnSeverity:
		return strconv.Itoa(a.Severity)
	case domain.ColumnMonth:
		return formatNullInt(a.Month)
	case domain.ColumnWeekday:
		return a.WeekdayName()
	case domain.ColumnIsWeekend:
		return formatNullBool(a.IsWeekend)
	default:
		return a.Field(column)
	}
}

// Write exports table to path and returns the number of rows written.
func (w *CleanedTableWriter) Write(path string, table *domain.CleanedTable) (int, error) {
	header := CleanedHeader(table)
	rows := 0
	err := w.csv.WriteStream(path, header, false, func(emit func([]string) error) error {
		for _, a := range table.Records {
			if err := emit(CleanedRow(header, a)); err != nil {
				return err
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	w.logger.Info("cleaned table exported",
		slog.String("path", path),
		slog.Int("rows", rows),
		slog.Int("columns", len(header)))
	return rows, nil
}

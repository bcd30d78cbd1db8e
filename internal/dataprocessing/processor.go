package dataprocessing

import (
	"sort"

	"prfcli/pkg/contracts/domain"
)

// ImputationReport summarizes median imputation of the feature frame
type ImputationReport struct {
	MissingBefore map[string]int              `json:"missing_before"`
	MissingAfter  map[string]int              `json:"missing_after"`
	Medians       map[string]domain.NullFloat `json:"medians"`
}

// BuildFeatureFrame projects the cleaned table onto the model features and
// the high-severity label.
func BuildFeatureFrame(table *domain.CleanedTable) *domain.FeatureFrame {
	frame := &domain.FeatureFrame{
		Columns: append([]string(nil), domain.FeatureColumns...),
		Values:  make([][]domain.NullFloat, 0, table.Len()),
		Labels:  make([]int, 0, table.Len()),
	}
	for _, a := range table.Records {
		row := make([]domain.NullFloat, len(frame.Columns))
		for j, col := range frame.Columns {
			row[j] = featureValue(a, col)
		}
		label := 0
		if a.HighSeverity() {
			label = 1
		}
		frame.Values = append(frame.Values, row)
		frame.Labels = append(frame.Labels, label)
	}
	return frame
}

func featureValue(a domain.Accident, column string) domain.NullFloat {
	switch column {
	case domain.ColumnFatalities:
		return domain.Float(float64(a.Fatalities))
	case domain.ColumnSevereInjuries:
		return domain.Float(float64(a.SevereInjuries))
	case domain.ColumnLatitude:
		return a.Latitude
	case domain.ColumnLongitude:
		return a.Longitude
	case domain.ColumnMonth:
		if a.Month.Valid {
			return domain.Float(float64(a.Month.Value))
		}
	case domain.ColumnKilometre:
		return a.Kilometre
	case domain.ColumnRoadNumber:
		return a.RoadNumber
	}
	return domain.NullFloat{}
}

// Median returns the median of values, averaging the two middle values for
// an even count. The input is not reordered.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// ImputeMedian fills each column's missing cells with the median of its
// non-missing cells over the whole frame. A column with no values stays
// missing. The input frame is not modified.
func ImputeMedian(frame *domain.FeatureFrame) (*domain.FeatureFrame, *ImputationReport) {
	report := &ImputationReport{
		MissingBefore: frame.MissingCounts(),
		Medians:       make(map[string]domain.NullFloat, len(frame.Columns)),
	}

	out := &domain.FeatureFrame{
		Columns: frame.Columns,
		Values:  make([][]domain.NullFloat, len(frame.Values)),
		Labels:  append([]int(nil), frame.Labels...),
	}
	for i, row := range frame.Values {
		out.Values[i] = append([]domain.NullFloat(nil), row...)
	}

	for j, col := range frame.Columns {
		present := make([]float64, 0, len(frame.Values))
		for _, row := range frame.Values {
			if row[j].Valid {
				present = append(present, row[j].Value)
			}
		}
		m, ok := Median(present)
		if !ok {
			report.Medians[col] = domain.NullFloat{}
			continue
		}
		report.Medians[col] = domain.Float(m)
		for _, row := range out.Values {
			if !row[j].Valid {
				row[j] = domain.Float(m)
			}
		}
	}

	report.MissingAfter = out.MissingCounts()
	return out, report
}

// DropIncomplete keeps the rows whose every feature is present and returns
// them as a dense dataset along with the number of rows dropped.
func DropIncomplete(frame *domain.FeatureFrame) (*domain.Dataset, int) {
	ds := &domain.Dataset{Columns: frame.Columns}
	dropped := 0
	for i, row := range frame.Values {
		dense := make([]float64, len(row))
		complete := true
		for j, v := range row {
			if !v.Valid {
				complete = false
				break
			}
			dense[j] = v.Value
		}
		if !complete {
			dropped++
			continue
		}
		ds.X = append(ds.X, dense)
		ds.Y = append(ds.Y, frame.Labels[i])
	}
	return ds, dropped
}

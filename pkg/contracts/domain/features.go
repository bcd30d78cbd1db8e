package domain

// LabelColumn is the name of the binary classification target.
const LabelColumn = "gravidade_alta"

// FeatureColumns is the fixed, ordered feature set used by both classifiers.
// Models are bound to this exact ordering.
var FeatureColumns = []string{
	ColumnFatalities,
	ColumnSevereInjuries,
	ColumnLatitude,
	ColumnLongitude,
	ColumnMonth,
}

// FeatureFrame is the feature projection before imputation; cells may be missing.
type FeatureFrame struct {
	Columns []string
	Values  [][]NullFloat
	Labels  []int
}

// Len returns the number of rows.
func (f *FeatureFrame) Len() int {
	return len(f.Values)
}

// MissingCounts returns the number of missing cells per column.
func (f *FeatureFrame) MissingCounts() map[string]int {
	counts := make(map[string]int, len(f.Columns))
	for _, c := range f.Columns {
		counts[c] = 0
	}
	for _, row := range f.Values {
		for j, v := range row {
			if !v.Valid {
				counts[f.Columns[j]]++
			}
		}
	}
	return counts
}

// Dataset is a complete feature matrix with labels.
type Dataset struct {
	Columns []string
	X       [][]float64
	Y       []int
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// Subset returns the rows at the given indices, in that order.
// Row slices are shared with the receiver.
func (d *Dataset) Subset(idx []int) *Dataset {
	out := &Dataset{
		Columns: d.Columns,
		X:       make([][]float64, len(idx)),
		Y:       make([]int, len(idx)),
	}
	for i, j := range idx {
		out.X[i] = d.X[j]
		out.Y[i] = d.Y[j]
	}
	return out
}

// PositiveRate returns the share of rows labelled 1.
func (d *Dataset) PositiveRate() float64 {
	if len(d.Y) == 0 {
		return 0
	}
	pos := 0
	for _, y := range d.Y {
		if y == 1 {
			pos++
		}
	}
	return float64(pos) / float64(len(d.Y))
}

// ClassCounts returns the number of rows per label.
func (d *Dataset) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, y := range d.Y {
		counts[y]++
	}
	return counts
}

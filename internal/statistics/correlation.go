package statistics

import (
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix holds pairwise Pearson coefficients in column order.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlate computes the Pearson matrix of equally long columns.
// A constant column yields NaN off the diagonal.
func Correlate(columns map[string][]float64, order []string) CorrelationMatrix {
	m := CorrelationMatrix{Columns: order, Values: make([][]float64, len(order))}
	for i, ci := range order {
		m.Values[i] = make([]float64, len(order))
		for j, cj := range order {
			if i == j {
				m.Values[i][j] = 1
				continue
			}
			m.Values[i][j] = stat.Correlation(columns[ci], columns[cj], nil)
		}
	}
	return m
}

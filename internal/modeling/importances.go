package modeling

import "sort"

// FeatureImportance pairs a feature with its importance
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// RankImportances pairs columns with importances, sorted ascending.
// Equal importances keep column order.
func RankImportances(columns []string, importances []float64) []FeatureImportance {
	out := make([]FeatureImportance, 0, len(columns))
	for i, c := range columns {
		if i < len(importances) {
			out = append(out, FeatureImportance{Feature: c, Importance: importances[i]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance < out[j].Importance })
	return out
}

// TopFeatures returns the n most important features, most important first.
func TopFeatures(ranked []FeatureImportance, n int) []FeatureImportance {
	out := make([]FeatureImportance, 0, n)
	for i := len(ranked) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, ranked[i])
	}
	return out
}

package modeling

import "fmt"

// Classifier is a binary or multi-class model over dense feature rows.
// Labels are the integers 0..k-1.
type Classifier interface {
	Name() string
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
	// Clone returns an unfitted copy with the same hyper-parameters.
	Clone() Classifier
}

// ProbabilityPredictor returns the probability of the positive class.
type ProbabilityPredictor interface {
	PredictProba(X [][]float64) ([]float64, error)
}

// ImportanceReporter exposes per-feature importances summing to 1.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

func numClasses(y []int) (int, error) {
	maxLabel := -1
	seen := make(map[int]bool)
	for i, v := range y {
		if v < 0 {
			return 0, fmt.Errorf("label %d at row %d is negative", v, i)
		}
		seen[v] = true
		if v > maxLabel {
			maxLabel = v
		}
	}
	if len(seen) < 2 {
		return 0, fmt.Errorf("training labels contain %d class(es), need at least 2", len(seen))
	}
	return maxLabel + 1, nil
}

func checkMatrix(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("empty training matrix")
	}
	if len(X) != len(y) {
		return fmt.Errorf("%d rows but %d labels", len(X), len(y))
	}
	return nil
}

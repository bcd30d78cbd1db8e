package modeling

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	apperrors "prfcli/internal/errors"
)

// ForestParams are the hyper-parameters of a RandomForest
type ForestParams struct {
	NEstimators     int   `msgpack:"n_estimators" json:"n_estimators"`
	MaxDepth        int   `msgpack:"max_depth" json:"max_depth"` // 0 = unlimited
	MinSamplesSplit int   `msgpack:"min_samples_split" json:"min_samples_split"`
	MaxFeatures     int   `msgpack:"max_features" json:"max_features"` // 0 = floor(sqrt(p))
	Seed            int64 `msgpack:"seed" json:"seed"`
	Bootstrap       bool  `msgpack:"bootstrap" json:"bootstrap"`
}

// DefaultForestParams mirrors the usual library defaults
func DefaultForestParams() ForestParams {
	return ForestParams{
		NEstimators:     100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		Seed:            42,
		Bootstrap:       true,
	}
}

// RandomForest averages the class distributions of bootstrapped Gini trees.
type RandomForest struct {
	Params      ForestParams   `msgpack:"params" json:"params"`
	NClasses    int            `msgpack:"n_classes" json:"n_classes"`
	NFeatures   int            `msgpack:"n_features" json:"n_features"`
	Trees       []DecisionTree `msgpack:"trees" json:"-"`
	Importances []float64      `msgpack:"importances" json:"importances"`
}

// NewRandomForest creates an unfitted forest
func NewRandomForest(params ForestParams) *RandomForest {
	return &RandomForest{Params: params}
}

// Name implements Classifier
func (f *RandomForest) Name() string { return "random_forest" }

// Clone implements Classifier
func (f *RandomForest) Clone() Classifier { return NewRandomForest(f.Params) }

// Fitted reports whether the forest has trees
func (f *RandomForest) Fitted() bool { return len(f.Trees) > 0 }

// maxFeatures resolves the per-split feature budget for p features
func (f *RandomForest) maxFeatures(p int) int {
	if f.Params.MaxFeatures > 0 {
		return min(f.Params.MaxFeatures, p)
	}
	return max(1, int(math.Sqrt(float64(p))))
}

// Fit implements Classifier. Each tree draws its own seed from the forest
// seed, so a fixed seed reproduces the whole forest.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if err := checkMatrix(X, y); err != nil {
		return apperrors.NewModelFitError(f.Name(), "invalid training data", err)
	}
	k, err := numClasses(y)
	if err != nil {
		return apperrors.NewModelFitError(f.Name(), "invalid training labels", err)
	}
	if f.Params.NEstimators < 1 {
		return apperrors.NewModelFitError(f.Name(), "n_estimators must be at least 1", nil)
	}

	n, p := len(X), len(X[0])
	f.NClasses = k
	f.NFeatures = p
	f.Trees = make([]DecisionTree, f.Params.NEstimators)

	rnd := rand.New(rand.NewSource(f.Params.Seed))
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	for t := range f.Trees {
		treeRnd := rand.New(rand.NewSource(rnd.Int63()))
		sample := all
		if f.Params.Bootstrap {
			sample = make([]int, n)
			for i := range sample {
				sample[i] = treeRnd.Intn(n)
			}
		}
		f.Trees[t] = DecisionTree{
			MaxDepth:        f.Params.MaxDepth,
			MinSamplesSplit: f.Params.MinSamplesSplit,
			MaxFeatures:     f.maxFeatures(p),
		}
		f.Trees[t].fit(X, y, sample, k, treeRnd)
	}

	f.Importances = make([]float64, p)
	for _, tree := range f.Trees {
		imp := append([]float64(nil), tree.Importances...)
		if s := floats.Sum(imp); s > 0 {
			floats.Scale(1/s, imp)
			floats.Add(f.Importances, imp)
		}
	}
	if s := floats.Sum(f.Importances); s > 0 {
		floats.Scale(1/s, f.Importances)
	}
	return nil
}

// PredictClassProba returns the averaged class distribution per row.
func (f *RandomForest) PredictClassProba(X [][]float64) ([][]float64, error) {
	if !f.Fitted() {
		return nil, fmt.Errorf("%s: %w", f.Name(), ErrNotFitted)
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != f.NFeatures {
			return nil, fmt.Errorf("%s: row %d has %d features, want %d", f.Name(), i, len(row), f.NFeatures)
		}
		acc := make([]float64, f.NClasses)
		for t := range f.Trees {
			floats.Add(acc, f.Trees[t].proba(row))
		}
		floats.Scale(1/float64(len(f.Trees)), acc)
		out[i] = acc
	}
	return out, nil
}

// PredictProba returns the probability of class 1 per row.
func (f *RandomForest) PredictProba(X [][]float64) ([]float64, error) {
	dist, err := f.PredictClassProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(dist))
	for i, d := range dist {
		if len(d) > 1 {
			out[i] = d[1]
		}
	}
	return out, nil
}

// Predict implements Classifier; ties go to the lower label.
func (f *RandomForest) Predict(X [][]float64) ([]int, error) {
	dist, err := f.PredictClassProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(dist))
	for i, d := range dist {
		out[i] = floats.MaxIdx(d)
	}
	return out, nil
}

// FeatureImportances implements ImportanceReporter (mean decrease in impurity).
func (f *RandomForest) FeatureImportances() []float64 {
	return append([]float64(nil), f.Importances...)
}

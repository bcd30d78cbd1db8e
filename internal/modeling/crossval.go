package modeling

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	apperrors "prfcli/internal/errors"
)

// CVResult holds per-fold accuracies
type CVResult struct {
	Model  string    `json:"model"`
	Folds  int       `json:"folds"`
	Scores []float64 `json:"scores"`
	Mean   float64   `json:"mean"`
	Std    float64   `json:"std"` // population standard deviation
}

// StratifiedKFold assigns the i-th row of each class (in row order) to fold
// i mod k and returns the held-out row indices of each fold, ascending.
func StratifiedKFold(y []int, k int) ([][]int, error) {
	if k < 2 {
		return nil, fmt.Errorf("k-fold needs at least 2 folds, got %d", k)
	}
	if len(y) < k {
		return nil, fmt.Errorf("%d rows cannot fill %d folds", len(y), k)
	}
	folds := make([][]int, k)
	seen := make(map[int]int)
	for i, label := range y {
		f := seen[label] % k
		seen[label]++
		folds[f] = append(folds[f], i)
	}
	for f := range folds {
		if len(folds[f]) == 0 {
			return nil, fmt.Errorf("fold %d is empty", f)
		}
		sort.Ints(folds[f])
	}
	return folds, nil
}

func complement(n int, held []int) []int {
	out := make([]int, 0, n-len(held))
	j := 0
	for i := 0; i < n; i++ {
		if j < len(held) && held[j] == i {
			j++
			continue
		}
		out = append(out, i)
	}
	return out
}

func rows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func labels(y []int, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}

// CrossValidate fits a fresh clone of model on each training fold and scores
// accuracy on the held-out fold.
func CrossValidate(model Classifier, X [][]float64, y []int, k int) (*CVResult, error) {
	folds, err := StratifiedKFold(y, k)
	if err != nil {
		return nil, apperrors.NewModelFitError(model.Name(), "cross-validation folds", err)
	}

	res := &CVResult{Model: model.Name(), Folds: k}
	for _, held := range folds {
		train := complement(len(y), held)
		m := model.Clone()
		if err := m.Fit(rows(X, train), labels(y, train)); err != nil {
			return nil, err
		}
		pred, err := m.Predict(rows(X, held))
		if err != nil {
			return nil, apperrors.NewModelFitError(model.Name(), "cross-validation predict", err)
		}
		res.Scores = append(res.Scores, Accuracy(labels(y, held), pred))
	}

	mean, variance := stat.PopMeanVariance(res.Scores, nil)
	res.Mean = mean
	res.Std = math.Sqrt(variance)
	return res, nil
}

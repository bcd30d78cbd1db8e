package modeling

import (
	"fmt"
	"log/slog"
)

// ForestGrid lists the candidate values of each searched parameter.
// A MaxDepth of 0 means unlimited.
type ForestGrid struct {
	MaxDepth    []int `json:"max_depth"`
	NEstimators []int `json:"n_estimators"`
}

// DefaultForestGrid is the search space used by analyze
func DefaultForestGrid() ForestGrid {
	return ForestGrid{MaxDepth: []int{5, 10, 0}, NEstimators: []int{50, 100}}
}

// Candidate is one grid point with its cross-validated score
type Candidate struct {
	MaxDepth    int     `json:"max_depth"`
	NEstimators int     `json:"n_estimators"`
	MeanScore   float64 `json:"mean_score"`
	StdScore    float64 `json:"std_score"`
}

// DepthLabel renders the depth with 0 as "None".
func (c Candidate) DepthLabel() string {
	if c.MaxDepth == 0 {
		return "None"
	}
	return fmt.Sprint(c.MaxDepth)
}

// GridResult is the outcome of a grid search
type GridResult struct {
	Folds      int         `json:"folds"`
	Candidates []Candidate `json:"candidates"`
	Best       Candidate   `json:"best"`
}

// Candidates enumerates the grid with parameter names in sorted order:
// max_depth varies slowest, n_estimators fastest.
func (g ForestGrid) Candidates() []Candidate {
	var out []Candidate
	for _, d := range g.MaxDepth {
		for _, n := range g.NEstimators {
			out = append(out, Candidate{MaxDepth: d, NEstimators: n})
		}
	}
	return out
}

// GridSearch cross-validates every candidate built from base. The best
// candidate has the highest mean accuracy; ties keep the first enumerated.
func GridSearch(base ForestParams, grid ForestGrid, X [][]float64, y []int, folds int, logger *slog.Logger) (*GridResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	candidates := grid.Candidates()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("grid search: empty grid")
	}

	res := &GridResult{Folds: folds}
	for i, c := range candidates {
		params := base
		params.MaxDepth = c.MaxDepth
		params.NEstimators = c.NEstimators

		cv, err := CrossValidate(NewRandomForest(params), X, y, folds)
		if err != nil {
			return nil, err
		}
		c.MeanScore, c.StdScore = cv.Mean, cv.Std
		res.Candidates = append(res.Candidates, c)
		logger.Debug("grid candidate scored",
			slog.String("max_depth", c.DepthLabel()),
			slog.Int("n_estimators", c.NEstimators),
			slog.Float64("mean_accuracy", c.MeanScore))

		if i == 0 || c.MeanScore > res.Best.MeanScore {
			res.Best = c
		}
	}
	return res, nil
}

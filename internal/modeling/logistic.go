package modeling

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	apperrors "prfcli/internal/errors"
)

// LogisticRegression is an L2-regularized binary logistic model with an
// unpenalized intercept, minimized with L-BFGS.
type LogisticRegression struct {
	C         float64   `msgpack:"c" json:"c"`
	MaxIter   int       `msgpack:"max_iter" json:"max_iter"`
	Coef      []float64 `msgpack:"coef" json:"coef"`
	Intercept float64   `msgpack:"intercept" json:"intercept"`

	logger *slog.Logger
}

// NewLogisticRegression creates an unfitted model
func NewLogisticRegression(c float64, maxIter int, logger *slog.Logger) *LogisticRegression {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogisticRegression{C: c, MaxIter: maxIter, logger: logger}
}

// Name implements Classifier
func (m *LogisticRegression) Name() string { return "logistic_regression" }

// Clone implements Classifier
func (m *LogisticRegression) Clone() Classifier {
	return NewLogisticRegression(m.C, m.MaxIter, m.logger)
}

// Fitted reports whether coefficients are available
func (m *LogisticRegression) Fitted() bool { return len(m.Coef) > 0 }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// log1pExp computes log(1 + e^z) without overflow
func log1pExp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// Fit implements Classifier. Labels must be 0 or 1.
func (m *LogisticRegression) Fit(X [][]float64, y []int) error {
	if err := checkMatrix(X, y); err != nil {
		return apperrors.NewModelFitError(m.Name(), "invalid training data", err)
	}
	k, err := numClasses(y)
	if err != nil {
		return apperrors.NewModelFitError(m.Name(), "invalid training labels", err)
	}
	if k != 2 {
		return apperrors.NewModelFitError(m.Name(), "binary labels 0/1 are required", nil)
	}

	p := len(X[0])
	c := m.C
	if c <= 0 {
		c = 1
	}
	z := make([]float64, len(X))

	// params = [w_0 .. w_{p-1}, b]
	objective := func(params []float64) float64 {
		w, b := params[:p], params[p]
		loss := 0.0
		for i, row := range X {
			zi := floats.Dot(w, row) + b
			if y[i] == 1 {
				loss += log1pExp(-zi)
			} else {
				loss += log1pExp(zi)
			}
		}
		return 0.5*floats.Dot(w, w) + c*loss
	}
	gradient := func(grad, params []float64) {
		w, b := params[:p], params[p]
		copy(grad[:p], w)
		grad[p] = 0
		for i, row := range X {
			z[i] = floats.Dot(w, row) + b
			r := c * (sigmoid(z[i]) - float64(y[i]))
			floats.AddScaled(grad[:p], r, row)
			grad[p] += r
		}
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	settings := &optimize.Settings{
		MajorIterations:   m.MaxIter,
		GradientThreshold: 1e-6,
	}
	x0 := make([]float64, p+1)

	res, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if res == nil || !finite(res.X) {
		return apperrors.NewModelFitError(m.Name(), "optimizer did not produce coefficients", err)
	}
	if err != nil || res.Status == optimize.IterationLimit {
		m.logger.Warn("logistic regression did not fully converge",
			slog.String("status", res.Status.String()),
			slog.Int("iterations", res.Stats.MajorIterations),
			slog.Any("error", err))
	}

	m.Coef = append([]float64(nil), res.X[:p]...)
	m.Intercept = res.X[p]
	return nil
}

func finite(x []float64) bool {
	if len(x) == 0 {
		return false
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PredictProba returns P(y=1) per row.
func (m *LogisticRegression) PredictProba(X [][]float64) ([]float64, error) {
	if !m.Fitted() {
		return nil, fmt.Errorf("%s: %w", m.Name(), ErrNotFitted)
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(m.Coef) {
			return nil, fmt.Errorf("%s: row %d has %d features, want %d", m.Name(), i, len(row), len(m.Coef))
		}
		out[i] = sigmoid(floats.Dot(m.Coef, row) + m.Intercept)
	}
	return out, nil
}

// Predict implements Classifier; the decision threshold is 0.5.
func (m *LogisticRegression) Predict(X [][]float64) ([]int, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		if p > 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// FeatureImportances reports the normalized absolute coefficients.
func (m *LogisticRegression) FeatureImportances() []float64 {
	out := make([]float64, len(m.Coef))
	for i, c := range m.Coef {
		out[i] = math.Abs(c)
	}
	if s := floats.Sum(out); s > 0 {
		floats.Scale(1/s, out)
	}
	return out
}

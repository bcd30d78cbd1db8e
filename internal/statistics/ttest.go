package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult is the outcome of Welch's unequal-variance t-test
type TTestResult struct {
	NA, NB       int
	MeanA, MeanB float64
	T            float64
	DF           float64
	P            float64
	// Sufficient is false when a group has fewer than two observations or
	// both groups have zero variance; T and P are NaN then.
	Sufficient bool
}

// WelchTTest compares the means of a and b without assuming equal variances.
// The p-value is two-sided.
func WelchTTest(a, b []float64) TTestResult {
	res := TTestResult{NA: len(a), NB: len(b), T: math.NaN(), DF: math.NaN(), P: math.NaN()}
	if len(a) > 0 {
		res.MeanA = stat.Mean(a, nil)
	}
	if len(b) > 0 {
		res.MeanB = stat.Mean(b, nil)
	}
	if len(a) < 2 || len(b) < 2 {
		return res
	}

	_, va := stat.MeanVariance(a, nil)
	_, vb := stat.MeanVariance(b, nil)
	na, nb := float64(len(a)), float64(len(b))
	sa, sb := va/na, vb/nb
	se := math.Sqrt(sa + sb)
	if se == 0 {
		return res
	}

	res.T = (res.MeanA - res.MeanB) / se
	res.DF = (sa + sb) * (sa + sb) / (sa*sa/(na-1) + sb*sb/(nb-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DF}
	res.P = 2 * dist.Survival(math.Abs(res.T))
	if res.P > 1 {
		res.P = 1
	}
	res.Sufficient = true
	return res
}

package statistics

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrSampleSize is returned when a normality test gets fewer than 3 values.
var ErrSampleSize = errors.New("shapiro-wilk needs between 3 and 5000 values")

// NormalityResult holds the Shapiro-Wilk statistic for one column
type NormalityResult struct {
	Column string  `json:"column"`
	N      int     `json:"n"`
	W      float64 `json:"w"`
	P      float64 `json:"p"`
}

// Normal reports whether normality is not rejected at alpha.
func (r NormalityResult) Normal(alpha float64) bool {
	return r.P >= alpha
}

// Royston polynomial coefficients
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.5440, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

func poly(c []float64, x float64) float64 {
	res := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		res = res*x + c[i]
	}
	return res
}

// ShapiroWilk computes W and its p-value using Royston's approximation.
// A constant sample yields W = 1 and p = 1.
func ShapiroWilk(values []float64) (w, p float64, err error) {
	n := len(values)
	if n < 3 || n > 5000 {
		return 0, 0, ErrSampleSize
	}

	x := append([]float64(nil), values...)
	sort.Float64s(x)

	mean := floats.Sum(x) / float64(n)
	ssq := 0.0
	for _, v := range x {
		d := v - mean
		ssq += d * d
	}
	if ssq == 0 || x[0] == x[n-1] {
		return 1, 1, nil
	}

	a := swCoefficients(n)
	num := 0.0
	for i := range x {
		num += a[i] * x[i]
	}
	w = num * num / ssq
	if w > 1 {
		w = 1
	}
	return w, swPValue(w, n), nil
}

// swCoefficients returns the antisymmetric weight vector for n sorted values
func swCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}

	m := make([]float64, n)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		summ2 += m[i] * m[i]
	}
	ssumm2 := math.Sqrt(summ2)
	u := 1 / math.Sqrt(float64(n))

	an := m[n-1]/ssumm2 + poly(swC1, u)
	var fac float64
	if n > 5 {
		an1 := m[n-2]/ssumm2 + poly(swC2, u)
		fac = math.Sqrt((summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
			(1 - 2*an*an - 2*an1*an1))
		for i := range a {
			a[i] = m[i] / fac
		}
		a[n-2], a[1] = an1, -an1
	} else {
		fac = math.Sqrt((summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*an*an))
		for i := range a {
			a[i] = m[i] / fac
		}
	}
	a[n-1], a[0] = an, -an
	return a
}

func swPValue(w float64, n int) float64 {
	if w >= 1 {
		return 1
	}
	nf := float64(n)
	switch {
	case n == 3:
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Max(p, 0)
	case n <= 11:
		gamma := poly(swG, nf)
		y := math.Log1p(-w)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		mu := poly(swC3, nf)
		sigma := math.Exp(poly(swC4, nf))
		return distuv.UnitNormal.Survival((y - mu) / sigma)
	default:
		ln := math.Log(nf)
		mu := poly(swC5, ln)
		sigma := math.Exp(poly(swC6, ln))
		return distuv.UnitNormal.Survival((math.Log1p(-w) - mu) / sigma)
	}
}

// SampleIndices draws k distinct indices out of n with a seeded source.
// When k >= n every index is returned in order.
func SampleIndices(n, k int, seed int64) []int {
	if k >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[:k]
}

// NormalityTests runs Shapiro-Wilk on the same seeded row sample of each column.
func NormalityTests(columns map[string][]float64, order []string, sample int, seed int64) ([]NormalityResult, error) {
	var results []NormalityResult
	for _, col := range order {
		values := columns[col]
		idx := SampleIndices(len(values), sample, seed)
		picked := make([]float64, len(idx))
		for i, j := range idx {
			picked[i] = values[j]
		}
		w, p, err := ShapiroWilk(picked)
		if err != nil {
			return nil, err
		}
		results = append(results, NormalityResult{Column: col, N: len(picked), W: w, P: p})
	}
	return results, nil
}

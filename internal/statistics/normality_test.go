package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapiroWilk(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		w, p   float64
		tolP   float64
	}{
		{"n3 exact", []float64{1, 2, 4}, 0.9643, 0.6369, 0.001},
		{"n3 linear", []float64{3, 1, 2}, 1, 1, 0},
		{"uniform ten", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9702, 0.8924, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, p, err := ShapiroWilk(tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.w, w, 0.001)
			assert.InDelta(t, tt.p, p, tt.tolP+1e-9)
		})
	}
}

func TestShapiroWilk_RejectsSkewedCounts(t *testing.T) {
	values := make([]float64, 200)
	for i := 0; i < 20; i++ {
		values[i*10] = float64(1 + i%3)
	}
	w, p, err := ShapiroWilk(values)
	require.NoError(t, err)
	assert.Less(t, w, 0.6)
	assert.Less(t, p, 0.05)
}

func TestShapiroWilk_Constant(t *testing.T) {
	w, p, err := ShapiroWilk([]float64{0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, w)
	assert.Equal(t, 1.0, p)
}

func TestShapiroWilk_SampleSize(t *testing.T) {
	_, _, err := ShapiroWilk([]float64{1, 2})
	assert.ErrorIs(t, err, ErrSampleSize)
}

func TestShapiroWilk_MidSizeRange(t *testing.T) {
	w, p, err := ShapiroWilk([]float64{2.1, 3.4, 1.9, 5.6, 4.4, 3.3, 2.8})
	require.NoError(t, err)
	assert.True(t, w > 0 && w <= 1)
	assert.True(t, p >= 0 && p <= 1)
	assert.False(t, math.IsNaN(p))
}

func TestSampleIndices(t *testing.T) {
	a := SampleIndices(1000, 500, 42)
	b := SampleIndices(1000, 500, 42)
	assert.Equal(t, a, b)
	assert.Len(t, a, 500)

	seen := make(map[int]bool)
	for _, i := range a {
		assert.False(t, seen[i], "sampled without replacement")
		seen[i] = true
	}

	assert.Equal(t, []int{0, 1, 2}, SampleIndices(3, 500, 42))
}

func TestNormalityTests(t *testing.T) {
	cols := map[string][]float64{
		"a": {1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		"b": {0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	results, err := NormalityTests(cols, []string{"a", "b"}, 500, 42)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Column)
	assert.Equal(t, 10, results[0].N)
	assert.True(t, results[0].Normal(0.05))
	assert.Equal(t, 1.0, results[1].P)
}

package modeling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "prfcli/internal/errors"
	"prfcli/pkg/contracts/domain"
)

func TestStratifiedSplit_Reproducible(t *testing.T) {
	ds := syntheticDataset(500, 1)

	trainA, testA, err := StratifiedSplit(ds, 0.3, 42)
	require.NoError(t, err)
	trainB, testB, err := StratifiedSplit(ds, 0.3, 42)
	require.NoError(t, err)

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
	assert.Equal(t, ds.Len(), trainA.Len()+testA.Len())

	_, testC, err := StratifiedSplit(ds, 0.3, 7)
	require.NoError(t, err)
	assert.NotEqual(t, testA.X, testC.X, "a different seed selects different rows")
}

func TestStratifiedSplit_PreservesClassBalance(t *testing.T) {
	ds := syntheticDataset(2000, 3)
	train, test, err := StratifiedSplit(ds, 0.3, 42)
	require.NoError(t, err)

	overall := ds.PositiveRate()
	assert.InDelta(t, overall, train.PositiveRate(), 0.02)
	assert.InDelta(t, overall, test.PositiveRate(), 0.02)
	assert.InDelta(t, 600, test.Len(), 2)
}

func TestStratifiedSplit_KeepsRowOrder(t *testing.T) {
	ds := &domain.Dataset{}
	for i := 0; i < 20; i++ {
		ds.X = append(ds.X, []float64{float64(i)})
		ds.Y = append(ds.Y, i%2)
	}
	train, test, err := StratifiedSplit(ds, 0.25, 42)
	require.NoError(t, err)

	for _, part := range []*domain.Dataset{train, test} {
		for i := 1; i < part.Len(); i++ {
			assert.Less(t, part.X[i-1][0], part.X[i][0])
		}
	}
	// round(10 * 0.25) = 3 per class
	assert.Equal(t, 6, test.Len())
}

func TestStratifiedSplit_ClampsSmallClasses(t *testing.T) {
	ds := &domain.Dataset{
		X: [][]float64{{1}, {2}, {3}, {4}, {5}, {6}},
		Y: []int{0, 0, 0, 0, 1, 1},
	}
	train, test, err := StratifiedSplit(ds, 0.1, 42)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 1, 1: 1}, test.ClassCounts(), "at least one row per class is held out")
	assert.Equal(t, map[int]int{0: 3, 1: 1}, train.ClassCounts())

	_, test, err = StratifiedSplit(ds, 0.9, 42)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 3, 1: 1}, test.ClassCounts(), "at least one row per class stays in training")
}

func TestStratifiedSplit_Errors(t *testing.T) {
	ds := syntheticDataset(50, 1)
	for _, f := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, _, err := StratifiedSplit(ds, f, 42)
		assert.Error(t, err, "fraction %v", f)
	}

	single := &domain.Dataset{X: [][]float64{{1}, {2}}, Y: []int{0, 0}}
	_, _, err := StratifiedSplit(single, 0.3, 42)
	assert.True(t, apperrors.IsModelFitError(err))

	lonely := &domain.Dataset{X: [][]float64{{1}, {2}, {3}}, Y: []int{0, 0, 1}}
	_, _, err = StratifiedSplit(lonely, 0.3, 42)
	assert.True(t, apperrors.IsModelFitError(err))
}

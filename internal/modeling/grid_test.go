package modeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForestGrid_Candidates(t *testing.T) {
	got := DefaultForestGrid().Candidates()
	want := []struct {
		depth string
		n     int
	}{
		{"5", 50}, {"5", 100}, {"10", 50}, {"10", 100}, {"None", 50}, {"None", 100},
	}
	require.Len(t, got, len(want))
	for i, w := range want {
		assert.Equal(t, w.depth, got[i].DepthLabel())
		assert.Equal(t, w.n, got[i].NEstimators)
	}
}

func TestGridSearch(t *testing.T) {
	ds := syntheticDataset(150, 61)
	grid := ForestGrid{MaxDepth: []int{1, 0}, NEstimators: []int{5, 10}}

	res, err := GridSearch(DefaultForestParams(), grid, ds.X, ds.Y, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Folds)
	require.Len(t, res.Candidates, 4)

	best := res.Candidates[0]
	for _, c := range res.Candidates[1:] {
		if c.MeanScore > best.MeanScore {
			best = c
		}
	}
	assert.Equal(t, best, res.Best, "first candidate wins ties")
	assert.Equal(t, 0, res.Best.MaxDepth, "a single split cannot express the two-feature rule")

	again, err := GridSearch(DefaultForestParams(), grid, ds.X, ds.Y, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestGridSearch_EmptyGrid(t *testing.T) {
	ds := syntheticDataset(30, 1)
	_, err := GridSearch(DefaultForestParams(), ForestGrid{}, ds.X, ds.Y, 3, nil)
	assert.Error(t, err)
}

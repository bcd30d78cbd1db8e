package modeling

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	apperrors "prfcli/internal/errors"
	"prfcli/pkg/contracts/domain"
)

// StratifiedSplit moves round(n_c * testFraction) rows of each class c,
// clamped to [1, n_c-1], into the test partition. Rows are chosen by a
// seeded shuffle; both partitions keep the original row order.
func StratifiedSplit(ds *domain.Dataset, testFraction float64, seed int64) (train, test *domain.Dataset, err error) {
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, fmt.Errorf("test fraction %v must lie strictly between 0 and 1", testFraction)
	}

	byClass := make(map[int][]int)
	for i, y := range ds.Y {
		byClass[y] = append(byClass[y], i)
	}
	if len(byClass) < 2 {
		return nil, nil, apperrors.NewModelFitError("", "the label has a single class", nil)
	}

	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rnd := rand.New(rand.NewSource(seed))
	inTest := make([]bool, ds.Len())
	for _, c := range classes {
		idx := append([]int(nil), byClass[c]...)
		if len(idx) < 2 {
			return nil, nil, apperrors.NewModelFitError("",
				fmt.Sprintf("class %d has %d row(s), at least 2 are needed to split", c, len(idx)), nil)
		}
		rnd.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		k := int(math.Round(float64(len(idx)) * testFraction))
		k = max(1, min(k, len(idx)-1))
		for _, i := range idx[:k] {
			inTest[i] = true
		}
	}

	var trainIdx, testIdx []int
	for i, t := range inTest {
		if t {
			testIdx = append(testIdx, i)
		} else {
			trainIdx = append(trainIdx, i)
		}
	}
	return ds.Subset(trainIdx), ds.Subset(testIdx), nil
}

package modeling

import (
	"math/rand"

	"prfcli/pkg/contracts/domain"
)

// syntheticDataset builds n rows where the label is 1 when the first two
// features sum to at least 2, mimicking the severity label.
func syntheticDataset(n int, seed int64) *domain.Dataset {
	rnd := rand.New(rand.NewSource(seed))
	ds := &domain.Dataset{Columns: []string{"mortos", "feridos_graves", "latitude", "longitude", "mes"}}
	for i := 0; i < n; i++ {
		deaths := float64(rnd.Intn(3))
		injuries := float64(rnd.Intn(3))
		row := []float64{deaths, injuries, -30 + rnd.Float64()*25, -70 + rnd.Float64()*35, float64(1 + rnd.Intn(12))}
		label := 0
		if deaths+injuries >= 2 {
			label = 1
		}
		ds.X = append(ds.X, row)
		ds.Y = append(ds.Y, label)
	}
	return ds
}

package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/modeling"
	"prfcli/pkg/contracts/domain"
)

func TestPredictionsWriter_Write(t *testing.T) {
	ds := &domain.Dataset{
		Columns: []string{"mortos", "mes"},
		X:       [][]float64{{1, 3}, {0, 12}},
		Y:       []int{1, 0},
	}
	preds := []modeling.Prediction{
		{Logistic: 1, LogisticProba: 0.875, Forest: 1, ForestProba: 0.9},
		{Logistic: 0, LogisticProba: 0.1, Forest: 0, ForestProba: 0},
	}
	path := filepath.Join(t.TempDir(), "predicoes.csv")

	require.NoError(t, NewPredictionsWriter(NewCSVWriter(nil, ';', nil)).Write(path, ds, preds))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "mortos;mes;gravidade_alta;pred_logistica;proba_logistica;pred_floresta;proba_floresta", lines[0])
	assert.Equal(t, "1;3;1;1;0.875;1;0.900", lines[1])
	assert.Equal(t, "0;12;0;0;0.100;0;0.000", lines[2])
}

func TestPredictionsWriter_LengthMismatch(t *testing.T) {
	ds := &domain.Dataset{Columns: []string{"mortos"}, X: [][]float64{{1}}, Y: []int{1}}
	path := filepath.Join(t.TempDir(), "predicoes.csv")

	err := NewPredictionsWriter(NewCSVWriter(nil, ',', nil)).Write(path, ds, nil)
	assert.Error(t, err)
	assert.NoFileExists(t, path)
}

package modeling

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"prfcli/internal/files"
	"prfcli/pkg/contracts"
)

func fittedArtifact(t *testing.T) (*Artifact, [][]float64) {
	t.Helper()
	ds := syntheticDataset(200, 71)
	opts := DefaultTrainOptions()
	opts.Forest.NEstimators = 10
	opts.SkipGridSearch = true

	res, err := Train(t.Context(), ds, opts, nil)
	require.NoError(t, err)
	return NewArtifact("run-1", ds.Columns, res.Scaler, res.Logistic, res.Forest), ds.X
}

func TestArtifact_SaveLoadScore(t *testing.T) {
	a, X := fittedArtifact(t)
	path := filepath.Join(t.TempDir(), "models", "model.msgpack")
	require.NoError(t, a.Save(path, nil))

	loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, a.FeatureColumns, loaded.FeatureColumns)
	assert.WithinDuration(t, a.CreatedAt, loaded.CreatedAt, time.Millisecond)
	assert.Equal(t, a.Scaler, loaded.Scaler)
	assert.Equal(t, a.Logistic.Coef, loaded.Logistic.Coef)
	assert.Len(t, loaded.Forest.Trees, 10)

	want, err := a.Score(a.FeatureColumns, X)
	require.NoError(t, err)
	got, err := loaded.Score(loaded.FeatureColumns, X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestArtifact_ScoreRejectsColumnOrder(t *testing.T) {
	a, X := fittedArtifact(t)
	swapped := append([]string(nil), a.FeatureColumns...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	_, err := a.Score(swapped, X)
	assert.Error(t, err)
	_, err = a.Score(a.FeatureColumns[:4], X)
	assert.Error(t, err)
}

func TestLoadArtifact_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadArtifact(filepath.Join(dir, "missing.msgpack"))
	assert.Error(t, err)

	stale := filepath.Join(dir, "stale.msgpack")
	m := files.NewManager("", nil)
	require.NoError(t, m.WriteAtomic(stale, func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(&Artifact{Version: contracts.ArtifactFormatVersion + 1})
	}))
	_, err = LoadArtifact(stale)
	assert.ErrorContains(t, err, "format")
}

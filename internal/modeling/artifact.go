package modeling

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"prfcli/internal/files"
	"prfcli/pkg/contracts"
)

// Artifact is the persisted checkpoint of a modeling run.
type Artifact struct {
	Version        int                 `msgpack:"version"`
	RunID          string              `msgpack:"run_id"`
	CreatedAt      time.Time           `msgpack:"created_at"`
	FeatureColumns []string            `msgpack:"feature_columns"`
	Scaler         *StandardScaler     `msgpack:"scaler"`
	Logistic       *LogisticRegression `msgpack:"logistic"`
	Forest         *RandomForest       `msgpack:"forest"`
}

// Prediction is the output of both models for one row
type Prediction struct {
	Logistic      int     `json:"logistic"`
	LogisticProba float64 `json:"logistic_proba"`
	Forest        int     `json:"forest"`
	ForestProba   float64 `json:"forest_proba"`
}

// NewArtifact bundles fitted models with their feature order.
func NewArtifact(runID string, columns []string, scaler *StandardScaler, lr *LogisticRegression, rf *RandomForest) *Artifact {
	return &Artifact{
		Version:        contracts.ArtifactFormatVersion,
		RunID:          runID,
		CreatedAt:      time.Now().UTC(),
		FeatureColumns: append([]string(nil), columns...),
		Scaler:         scaler,
		Logistic:       lr,
		Forest:         rf,
	}
}

// Save writes the artifact atomically.
func (a *Artifact) Save(path string, logger *slog.Logger) error {
	m := files.NewManager("", logger)
	return m.WriteAtomic(path, func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(a)
	})
}

// LoadArtifact reads an artifact and checks its format version.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer f.Close()

	var a Artifact
	if err := msgpack.NewDecoder(f).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}
	if a.Version != contracts.ArtifactFormatVersion {
		return nil, fmt.Errorf("model artifact %s has format %d, want %d", path, a.Version, contracts.ArtifactFormatVersion)
	}
	return &a, nil
}

// Score predicts with both models. columns must match the training order.
func (a *Artifact) Score(columns []string, X [][]float64) ([]Prediction, error) {
	if !slices.Equal(columns, a.FeatureColumns) {
		return nil, fmt.Errorf("feature columns %v do not match the model's %v", columns, a.FeatureColumns)
	}
	if a.Scaler == nil || a.Logistic == nil || a.Forest == nil {
		return nil, fmt.Errorf("model artifact is incomplete")
	}

	scaled, err := a.Scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	lp, err := a.Logistic.PredictProba(scaled)
	if err != nil {
		return nil, err
	}
	lc, err := a.Logistic.Predict(scaled)
	if err != nil {
		return nil, err
	}
	fp, err := a.Forest.PredictProba(X)
	if err != nil {
		return nil, err
	}
	fc, err := a.Forest.Predict(X)
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, len(X))
	for i := range out {
		out[i] = Prediction{Logistic: lc[i], LogisticProba: lp[i], Forest: fc[i], ForestProba: fp[i]}
	}
	return out, nil
}

package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"prfcli/internal/modeling"
	"prfcli/pkg/contracts/domain"
)

// Prediction columns appended after the features and the label
var PredictionColumns = []string{"pred_logistica", "proba_logistica", "pred_floresta", "proba_floresta"}

// PredictionsWriter exports scored rows
type PredictionsWriter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewPredictionsWriter creates a predictions writer on top of w
func NewPredictionsWriter(w *CSVWriter) *PredictionsWriter {
	return &PredictionsWriter{csv: w, logger: w.logger}
}

// Write exports one line per dataset row with its features, label and the
// predictions of both models.
func (w *PredictionsWriter) Write(path string, ds *domain.Dataset, preds []modeling.Prediction) error {
	if len(preds) != ds.Len() {
		return fmt.Errorf("have %d predictions for %d rows", len(preds), ds.Len())
	}
	header := make([]string, 0, len(ds.Columns)+1+len(PredictionColumns))
	header = append(header, ds.Columns...)
	header = append(header, domain.LabelColumn)
	header = append(header, PredictionColumns...)

	err := w.csv.WriteStream(path, header, false, func(emit func([]string) error) error {
		for i, p := range preds {
			row := make([]string, 0, len(header))
			for _, v := range ds.X[i] {
				row = append(row, formatFloat(v))
			}
			row = append(row,
				strconv.Itoa(ds.Y[i]),
				strconv.Itoa(p.Logistic),
				formatScore(p.LogisticProba),
				strconv.Itoa(p.Forest),
				formatScore(p.ForestProba),
			)
			if err := emit(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.logger.Info("predictions exported", slog.String("path", path), slog.Int("rows", len(preds)))
	return nil
}

package operations

import (
	"context"
	"fmt"
	"log/slog"

	"prfcli/internal/dataprocessing"
	"prfcli/internal/exporter"
	"prfcli/internal/modeling"
)

// DefaultPredictionsFile is the scoring output name inside the results directory
const DefaultPredictionsFile = "predicoes.csv"

// ScoreSummary describes one scoring run
type ScoreSummary struct {
	Rows             int     `json:"rows"`
	Dropped          int     `json:"dropped"`
	LogisticAccuracy float64 `json:"logistic_accuracy"`
	ForestAccuracy   float64 `json:"forest_accuracy"`
	Output           string  `json:"output"`
}

// Score applies a saved model artifact to a cleaned table checkpoint. Rows
// are prepared the way training prepares them: median imputation, then
// incomplete rows are dropped.
func (p *Pipeline) Score(ctx context.Context, tablePath, artifactPath, outPath string) (*ScoreSummary, error) {
	if tablePath == "" {
		tablePath = p.opts.Paths.CleanedTable
	}
	if artifactPath == "" {
		artifactPath = p.opts.Paths.ModelArtifact
	}
	if artifactPath == "" {
		return nil, NewValidationError("score", "no model artifact configured")
	}
	if outPath == "" {
		outPath = p.opts.Paths.GetReportPath(DefaultPredictionsFile)
	}

	artifact, err := modeling.LoadArtifact(artifactPath)
	if err != nil {
		return nil, err
	}
	table, err := dataprocessing.LoadCleanedTable(ctx, tablePath, p.opts.Config.Output.Separator(), p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned table: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, NewCancellationError("score", err)
	}

	imputed, _ := dataprocessing.ImputeMedian(dataprocessing.BuildFeatureFrame(table))
	ds, dropped := dataprocessing.DropIncomplete(imputed)

	preds, err := artifact.Score(ds.Columns, ds.X)
	if err != nil {
		return nil, err
	}
	if err := p.opts.Paths.EnsureDirectories(); err != nil {
		return nil, NewFatalError("cannot prepare output directories", err)
	}
	if err := exporter.NewPredictionsWriter(exporter.NewCSVWriter(p.opts.Paths, p.opts.Config.Output.Separator(), p.logger)).Write(outPath, ds, preds); err != nil {
		return nil, err
	}

	summary := &ScoreSummary{Rows: ds.Len(), Dropped: dropped, Output: outPath}
	if ds.Len() > 0 {
		var lr, rf int
		for i, pr := range preds {
			if pr.Logistic == ds.Y[i] {
				lr++
			}
			if pr.Forest == ds.Y[i] {
				rf++
			}
		}
		summary.LogisticAccuracy = float64(lr) / float64(ds.Len())
		summary.ForestAccuracy = float64(rf) / float64(ds.Len())
	}

	p.logger.InfoContext(ctx, "table scored",
		slog.String("artifact", artifactPath),
		slog.String("run_id", artifact.RunID),
		slog.Int("rows", summary.Rows),
		slog.Int("dropped", summary.Dropped),
		slog.Float64("logistic_accuracy", summary.LogisticAccuracy),
		slog.Float64("forest_accuracy", summary.ForestAccuracy))
	return summary, nil
}

package operations

import (
	"context"
	"fmt"
	"log/slog"

	"prfcli/internal/config"
	"prfcli/internal/dataprocessing"
	"prfcli/internal/infrastructure"
)

// Step selections of the CLI commands
var (
	AnalyzeSteps = []string{StageIDIngest, StageIDClean, StageIDExport, StageIDExplore, StageIDImpute, StageIDModel, StageIDReport}
	CleanSteps   = []string{StageIDIngest, StageIDClean, StageIDExport}
	ModelSteps   = []string{StageIDExplore, StageIDImpute, StageIDModel, StageIDReport}
)

// Pipeline wires the standard steps to configuration, paths and metrics.
type Pipeline struct {
	manager *Manager
	opts    *StageOptions
	logger  *slog.Logger
}

// NewPipeline registers the standard steps in run order.
func NewPipeline(cfg *config.Config, paths *config.Paths, metrics *infrastructure.Metrics, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if paths == nil {
		paths = config.NewPaths(cfg)
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := &StageOptions{Config: cfg, Paths: paths, Metrics: metrics, Logger: logger}

	manager := NewManager(NewRegistry(), metrics, logger)
	for _, step := range []Step{
		NewIngestStage(opts),
		NewCleanStage(opts),
		NewExportStage(opts),
		NewExploreStage(opts),
		NewImputeStage(opts),
		NewModelStage(opts),
		NewReportStage(opts),
	} {
		if err := manager.RegisterStage(step); err != nil {
			return nil, err
		}
	}
	return &Pipeline{manager: manager, opts: opts, logger: logger}, nil
}

// Manager returns the underlying manager
func (p *Pipeline) Manager() *Manager {
	return p.manager
}

// Run executes the selected steps and writes the metrics textfile.
func (p *Pipeline) Run(ctx context.Context, steps []string, data *RunData) (*OperationResponse, error) {
	if err := p.opts.Paths.EnsureDirectories(); err != nil {
		return nil, NewFatalError("cannot prepare output directories", err)
	}

	resp, err := p.manager.Execute(ctx, OperationRequest{Steps: steps, Data: data})

	if path := p.opts.Paths.MetricsFile; path != "" && p.opts.Metrics != nil {
		if werr := p.opts.Metrics.WriteTextfile(path); werr != nil {
			p.logger.WarnContext(ctx, "failed to write metrics textfile",
				slog.String("path", path),
				slog.String("error", werr.Error()))
		} else if resp != nil && resp.Data != nil {
			resp.Data.AddOutput(path)
		}
	}
	return resp, err
}

// Analyze runs the full pipeline.
func (p *Pipeline) Analyze(ctx context.Context) (*OperationResponse, error) {
	return p.Run(ctx, AnalyzeSteps, nil)
}

// Clean ingests the extracts and writes the cleaned table only.
func (p *Pipeline) Clean(ctx context.Context) (*OperationResponse, error) {
	return p.Run(ctx, CleanSteps, nil)
}

// Model reloads a cleaned table checkpoint and runs the statistics,
// modeling and report steps on it.
func (p *Pipeline) Model(ctx context.Context, tablePath string) (*OperationResponse, error) {
	if tablePath == "" {
		tablePath = p.opts.Paths.CleanedTable
	}
	table, err := dataprocessing.LoadCleanedTable(ctx, tablePath, p.opts.Config.Output.Separator(), p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load cleaned table: %w", err)
	}
	return p.Run(ctx, ModelSteps, &RunData{Cleaned: table, CleanedRows: table.Len()})
}

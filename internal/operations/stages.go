package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"prfcli/internal/config"
	"prfcli/internal/dataprocessing"
	apperrors "prfcli/internal/errors"
	"prfcli/internal/exporter"
	"prfcli/internal/infrastructure"
	"prfcli/internal/modeling"
	"prfcli/internal/statistics"
)

// Step IDs
const (
	StageIDIngest  = "ingest"
	StageIDClean   = "clean"
	StageIDExport  = "export"
	StageIDExplore = "explore"
	StageIDImpute  = "impute"
	StageIDModel   = "model"
	StageIDReport  = "report"
)

// Step names
const (
	StageNameIngest  = "Ingestion"
	StageNameClean   = "Normalization and derived features"
	StageNameExport  = "Cleaned table export"
	StageNameExplore = "Exploratory statistics"
	StageNameImpute  = "Imputation and filtering"
	StageNameModel   = "Model fit and evaluation"
	StageNameReport  = "Diagnostics report"
)

// WeatherFallback replaces a missing weather condition in the cleaned table
const WeatherFallback = "Ignorado"

// NormalityAlpha is the significance level of the normality verdicts
const NormalityAlpha = 0.05

// StageOptions holds what every step needs besides the run state
type StageOptions struct {
	Config  *config.Config
	Paths   *config.Paths
	Metrics *infrastructure.Metrics
	Logger  *slog.Logger
}

func (o *StageOptions) stepLogger(id string) *slog.Logger {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", id))
}

// IngestStage discovers and reads the yearly extracts
type IngestStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewIngestStage creates the ingestion step
func NewIngestStage(opts *StageOptions) *IngestStage {
	return &IngestStage{
		BaseStage: NewBaseStage(StageIDIngest, StageNameIngest, nil),
		opts:      opts,
		logger:    opts.stepLogger(StageIDIngest),
	}
}

// Execute reads every yearly extract into the raw table
func (s *IngestStage) Execute(ctx context.Context, state *OperationState) error {
	in := s.opts.Config.Input
	raw, err := dataprocessing.Ingest(ctx, s.opts.Paths.DataDir, dataprocessing.IngestOptions{
		ExcludeMarker: in.ExcludeMarker,
		Parser: dataprocessing.ParserOptions{
			Delimiter:      in.Separator(),
			Encoding:       in.Encoding,
			MaxLoggedSkips: dataprocessing.DefaultParserOptions().MaxLoggedSkips,
			Logger:         s.logger,
		},
	})
	if err != nil {
		return err
	}

	data := state.Data
	data.Raw = raw
	schema := dataprocessing.SchemaWarnings(raw)
	for _, w := range schema {
		data.Warnings.AddSchema(w)
		s.logger.WarnContext(ctx, "expected column missing",
			slog.String("file", w.File),
			slog.Int("year", w.Year),
			slog.String("column", w.Column))
	}
	data.Warnings.SkippedRows += raw.SkippedRows()

	for _, f := range raw.Files {
		s.opts.Metrics.ObserveIngest(f.Year, f.Rows, f.Skipped)
	}
	s.opts.Metrics.ObserveWarnings(nil, len(schema))

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("files", len(raw.Files))
	stepState.SetMetadata("rows", len(raw.Records))
	stepState.SetMetadata("skipped", raw.SkippedRows())
	return nil
}

// CleanStage normalizes the raw table and derives the calendar and severity columns
type CleanStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewCleanStage creates the cleaning step
func NewCleanStage(opts *StageOptions) *CleanStage {
	return &CleanStage{
		BaseStage: NewBaseStage(StageIDClean, StageNameClean, []string{StageIDIngest}),
		opts:      opts,
		logger:    opts.stepLogger(StageIDClean),
	}
}

// Validate checks that a raw table is available
func (s *CleanStage) Validate(state *OperationState) error {
	if state.Data.Raw == nil {
		return errors.New("no raw table to clean")
	}
	return nil
}

// Execute builds the cleaned table
func (s *CleanStage) Execute(ctx context.Context, state *OperationState) error {
	in := s.opts.Config.Input
	cleaned, report := dataprocessing.Clean(state.Data.Raw, dataprocessing.CleanOptions{
		NullToken:       in.NullToken,
		DateLayouts:     in.DateLayouts,
		WeatherFallback: WeatherFallback,
		Logger:          s.logger,
	})
	state.Data.Cleaned = cleaned
	state.Data.Normalize = report
	report.ApplyTo(state.Data.Warnings)

	failures := apperrors.NewWarnings()
	report.ApplyTo(failures)
	s.opts.Metrics.ObserveWarnings(failures.ParseFailures, 0)

	s.logger.InfoContext(ctx, "table cleaned",
		slog.Int("rows", cleaned.Len()),
		slog.Int("invalid_dates", report.DateInvalid))
	state.GetStage(s.ID()).SetMetadata("rows", cleaned.Len())
	return nil
}

// ExportStage writes the cleaned table checkpoint
type ExportStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewExportStage creates the export step
func NewExportStage(opts *StageOptions) *ExportStage {
	return &ExportStage{
		BaseStage: NewBaseStage(StageIDExport, StageNameExport, []string{StageIDClean}),
		opts:      opts,
		logger:    opts.stepLogger(StageIDExport),
	}
}

// Validate checks that a cleaned table is available
func (s *ExportStage) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute writes the cleaned table to disk
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	path := s.opts.Paths.CleanedTable
	w := exporter.NewCleanedTableWriter(exporter.NewCSVWriter(s.opts.Paths, s.opts.Config.Output.Separator(), s.logger))
	rows, err := w.Write(path, state.Data.Cleaned)
	if err != nil {
		return err
	}
	state.Data.CleanedRows = rows
	state.Data.AddOutput(path)
	state.GetStage(s.ID()).SetMetadata("path", path)
	return nil
}

// ExploreStage computes the hypothesis tests and descriptive aggregates
type ExploreStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewExploreStage creates the exploratory statistics step
func NewExploreStage(opts *StageOptions) *ExploreStage {
	return &ExploreStage{
		BaseStage: NewBaseStage(StageIDExplore, StageNameExplore, []string{StageIDClean}),
		opts:      opts,
		logger:    opts.stepLogger(StageIDExplore),
	}
}

// Validate checks that a cleaned table is available
func (s *ExploreStage) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute runs normality, correlation and t-tests and the aggregates
func (s *ExploreStage) Execute(ctx context.Context, state *OperationState) error {
	table := state.Data.Cleaned
	m := s.opts.Config.Modeling
	columns := statistics.CountColumns(table)

	normality, err := statistics.NormalityTests(columns, statistics.CountColumnOrder, m.NormalitySample, m.Seed)
	if err != nil {
		// Too few rows for Shapiro-Wilk; the section reports "not available".
		s.logger.WarnContext(ctx, "normality tests skipped", slog.String("error", err.Error()))
	} else {
		state.Data.Normality = normality
		for _, r := range normality {
			s.logger.InfoContext(ctx, "normality test",
				slog.String("column", r.Column),
				slog.Float64("w", r.W),
				slog.Float64("p", r.P),
				slog.Bool("normal", r.Normal(NormalityAlpha)))
		}
	}

	corr := statistics.Correlate(columns, statistics.CountColumnOrder)
	state.Data.Correlation = &corr

	weekend, weekday := statistics.WeekendFatalities(table)
	ttest := statistics.WelchTTest(weekend, weekday)
	state.Data.TTest = &ttest

	if err := ctx.Err(); err != nil {
		return err
	}
	state.Data.Exploratory = statistics.Explore(table, statistics.DefaultTopN)
	state.GetStage(s.ID()).SetMetadata("years", len(state.Data.Exploratory.Yearly))
	return nil
}

// ImputeStage builds the model dataset
type ImputeStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewImputeStage creates the imputation step
func NewImputeStage(opts *StageOptions) *ImputeStage {
	return &ImputeStage{
		BaseStage: NewBaseStage(StageIDImpute, StageNameImpute, []string{StageIDClean}),
		opts:      opts,
		logger:    opts.stepLogger(StageIDImpute),
	}
}

// Validate checks that a cleaned table is available
func (s *ImputeStage) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute projects, imputes with medians and drops the rows still incomplete
func (s *ImputeStage) Execute(ctx context.Context, state *OperationState) error {
	frame := dataprocessing.BuildFeatureFrame(state.Data.Cleaned)
	imputed, report := dataprocessing.ImputeMedian(frame)
	ds, dropped := dataprocessing.DropIncomplete(imputed)

	state.Data.Imputation = report
	state.Data.Dataset = ds
	state.Data.RowsDropped = dropped
	s.opts.Metrics.SetModelRows(ds.Len(), dropped)

	s.logger.InfoContext(ctx, "dataset ready",
		slog.Int("rows", ds.Len()),
		slog.Int("dropped", dropped),
		slog.Float64("positive_rate", ds.PositiveRate()))
	state.GetStage(s.ID()).SetMetadata("rows", ds.Len())
	return nil
}

// ModelStage fits and evaluates both classifiers. Its failure does not fail the run.
type ModelStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewModelStage creates the modeling step
func NewModelStage(opts *StageOptions) *ModelStage {
	base := NewBaseStage(StageIDModel, StageNameModel, []string{StageIDImpute})
	base.critical = false
	return &ModelStage{
		BaseStage: base,
		opts:      opts,
		logger:    opts.stepLogger(StageIDModel),
	}
}

// Validate checks that a dataset is available
func (s *ModelStage) Validate(state *OperationState) error {
	if state.Data.Dataset == nil {
		return errors.New("no dataset to model")
	}
	return nil
}

// Execute trains, evaluates and optionally persists the models
func (s *ModelStage) Execute(ctx context.Context, state *OperationState) error {
	ds := state.Data.Dataset
	res, err := modeling.Train(ctx, ds, TrainOptions(s.opts.Config.Modeling), s.logger)
	if err != nil {
		if ctx.Err() == nil && !apperrors.IsModelFitError(err) {
			err = apperrors.NewModelFitError("", "training failed", err)
		}
		state.Data.ModelErr = err
		return err
	}
	state.Data.Model = res

	s.opts.Metrics.SetModelScores(res.Logistic.Name(), res.LogisticReport.Accuracy, res.LogisticCV.Mean)
	s.opts.Metrics.SetModelScores(res.Forest.Name(), res.ForestReport.Accuracy, res.ForestCV.Mean)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("logistic_accuracy", res.LogisticReport.Accuracy)
	stepState.SetMetadata("forest_accuracy", res.ForestReport.Accuracy)

	path := s.opts.Paths.ModelArtifact
	if path == "" {
		return nil
	}
	artifact := modeling.NewArtifact(state.ID, ds.Columns, res.Scaler, res.Logistic, res.Forest)
	if err := artifact.Save(path, s.logger); err != nil {
		err = fmt.Errorf("failed to save model artifact: %w", err)
		state.Data.ModelErr = err
		return err
	}
	state.Data.Artifact = artifact
	state.Data.AddOutput(path)
	s.logger.InfoContext(ctx, "model artifact saved", slog.String("path", path))
	return nil
}

// TrainOptions maps the modeling configuration onto training options
func TrainOptions(m config.ModelingConfig) modeling.TrainOptions {
	forest := modeling.DefaultForestParams()
	forest.NEstimators = m.ForestTrees
	forest.MaxDepth = m.ForestMaxDepth
	forest.Seed = m.Seed
	return modeling.TrainOptions{
		TestFraction:    m.TestFraction,
		Seed:            m.Seed,
		CVFolds:         m.CVFolds,
		GridFolds:       m.GridFolds,
		LogisticC:       m.LogisticC,
		LogisticMaxIter: m.LogisticMaxIter,
		Forest:          forest,
		Grid:            modeling.ForestGrid{MaxDepth: m.GridDepths, NEstimators: m.GridTrees},
		SkipGridSearch:  m.SkipGridSearch,
	}
}

// ReportStage writes the diagnostics text and the exploratory workbook
type ReportStage struct {
	BaseStage
	opts   *StageOptions
	logger *slog.Logger
}

// NewReportStage creates the report step. It depends on the cleaned table
// only, so a failed model still gets reported.
func NewReportStage(opts *StageOptions) *ReportStage {
	return &ReportStage{
		BaseStage: NewBaseStage(StageIDReport, StageNameReport, []string{StageIDClean}),
		opts:      opts,
		logger:    opts.stepLogger(StageIDReport),
	}
}

// Validate checks that a cleaned table is available
func (s *ReportStage) Validate(state *OperationState) error {
	return requireCleaned(state)
}

// Execute renders the diagnostics and the workbook
func (s *ReportStage) Execute(ctx context.Context, state *OperationState) error {
	data := state.Data
	report := &exporter.Report{
		RunID:       state.ID,
		Raw:         data.Raw,
		CleanedRows: data.Cleaned.Len(),
		Normalize:   data.Normalize,
		Warnings:    data.Warnings,
		Normality:   data.Normality,
		Correlation: data.Correlation,
		TTest:       data.TTest,
		Exploratory: data.Exploratory,
		Imputation:  data.Imputation,
		RowsDropped: data.RowsDropped,
		Model:       data.Model,
		ModelErr:    data.ModelErr,
		Alpha:       NormalityAlpha,
	}
	if data.Dataset != nil {
		report.RowsModeled = data.Dataset.Len()
	}

	path := s.opts.Paths.DiagnosticsFile
	if err := exporter.WriteDiagnostics(path, report, s.logger); err != nil {
		return err
	}
	data.AddOutput(path)

	if wb := s.opts.Paths.WorkbookFile; wb != "" {
		var importances []modeling.FeatureImportance
		if data.Model != nil {
			importances = data.Model.Importances
		}
		if err := exporter.NewWorkbookWriter(s.logger).Write(wb, data.Exploratory, importances); err != nil {
			return err
		}
		data.AddOutput(wb)
	}
	return nil
}

func requireCleaned(state *OperationState) error {
	if state.Data.Cleaned == nil {
		return errors.New("no cleaned table available")
	}
	return nil
}

package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/dataprocessing"
	apperrors "prfcli/internal/errors"
	"prfcli/internal/modeling"
	"prfcli/internal/statistics"
	"prfcli/pkg/contracts/domain"
)

var sectionHeader = regexp.MustCompile(`(?m)^=== ([A-Z_]+) ===$`)

func sectionNames(text string) []string {
	var names []string
	for _, m := range sectionHeader.FindAllStringSubmatch(text, -1) {
		names = append(names, m[1])
	}
	return names
}

var allSections = []string{
	"INGESTION", "CLEANING", "WARNINGS", "NORMALITY", "CORRELATION", "T_TEST",
	"EXPLORATORY", "MISSING_BEFORE", "MISSING_AFTER", "ROWS_REMAINING",
	"LOGISTIC_REGRESSION", "RANDOM_FOREST", "CROSS_VALIDATION", "GRID_SEARCH",
	"FEATURE_IMPORTANCE", "INTERPRETATION", "LIMITATIONS", "IMPROVEMENTS",
}

func TestRenderDiagnostics_Format(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDiagnostics(&buf, []Section{{Name: "A", Body: "one\n"}, {Name: "B", Body: "two"}})
	require.NoError(t, err)
	assert.Equal(t, "=== A ===\none\n\n=== B ===\ntwo\n\n", buf.String())
}

func TestReport_EmptyRendersEverySection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderDiagnostics(&buf, (&Report{}).Sections()))

	text := buf.String()
	assert.Equal(t, allSections, sectionNames(text))
	assert.Contains(t, text, "=== WARNINGS ===\nnone\n\n")
	assert.Contains(t, text, "=== LOGISTIC_REGRESSION ===\nnot available\n\n")
}

func TestReport_ModelFailure(t *testing.T) {
	r := &Report{ModelErr: apperrors.NewModelFitError("", "the label has a single class", nil)}
	var buf bytes.Buffer
	require.NoError(t, RenderDiagnostics(&buf, r.Sections()))
	assert.Contains(t, buf.String(), "=== RANDOM_FOREST ===\nmodeling failed: [MODEL_FIT] the label has a single class\n\n")
}

func TestReport_FullRun(t *testing.T) {
	table, norm := dataprocessing.Clean(rawFixture(), dataprocessing.DefaultCleanOptions())
	warnings := apperrors.NewWarnings()
	warnings.AddSchema(apperrors.SchemaWarning{File: "datatran2020.csv", Year: 2020, Column: "km"})
	norm.ApplyTo(warnings)

	cols := statistics.CountColumns(table)
	corr := statistics.Correlate(cols, statistics.CountColumnOrder)
	weekend, weekday := statistics.WeekendFatalities(table)
	tt := statistics.WelchTTest(weekend, weekday)
	frame, imputation := dataprocessing.ImputeMedian(dataprocessing.BuildFeatureFrame(table))
	ds, dropped := dataprocessing.DropIncomplete(frame)

	model := &modeling.Result{
		LogisticReport: mustEvaluate(t, "logistic_regression"),
		ForestReport:   mustEvaluate(t, "random_forest"),
		LogisticCV:     &modeling.CVResult{Model: "logistic_regression", Folds: 5, Mean: 0.9, Std: 0.01},
		ForestCV:       &modeling.CVResult{Model: "random_forest", Folds: 5, Mean: 0.95, Std: 0.02},
		Grid: &modeling.GridResult{
			Folds:      3,
			Candidates: []modeling.Candidate{{MaxDepth: 0, NEstimators: 50, MeanScore: 0.96}},
			Best:       modeling.Candidate{MaxDepth: 0, NEstimators: 50, MeanScore: 0.96},
		},
		Importances: modeling.RankImportances(domain.FeatureColumns, []float64{0.4, 0.5, 0.04, 0.04, 0.02}),
	}

	r := &Report{
		RunID:       "run-7",
		Raw:         &domain.RawTable{Columns: []string{"a"}, Files: []domain.FileStats{{Name: "datatran2020.csv", Year: 2020, Rows: 3}}},
		CleanedRows: table.Len(),
		Normalize:   norm,
		Warnings:    warnings,
		Normality:   []statistics.NormalityResult{{Column: "mortos", N: 3, W: 0.75, P: 0.001}},
		Correlation: &corr,
		TTest:       &tt,
		Exploratory: statistics.Explore(table, 10),
		Imputation:  imputation,
		RowsModeled: ds.Len(),
		RowsDropped: dropped,
		Model:       model,
	}

	path := filepath.Join(t.TempDir(), "texto_analise.txt")
	require.NoError(t, WriteDiagnostics(path, r, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Equal(t, allSections, sectionNames(text))
	assert.Contains(t, text, "Run run-7\n")
	assert.Contains(t, text, `schema: datatran2020.csv (year 2020) lacks column "km"`)
	assert.Contains(t, text, "unparsable values in mortos: 1")
	assert.Contains(t, text, "mortos: W=0.7500, p=0.0010 -> not normal")
	assert.Contains(t, text, "Rows remaining after dropping incomplete rows: 3 (dropped 0)")
	assert.Contains(t, text, "logistic_regression: 0.900 +/- 0.010 (5 folds)")
	assert.Contains(t, text, "Best random forest: {'max_depth': None, 'n_estimators': 50}")
	assert.Contains(t, text, "Most important features: feridos_graves, mortos")
	assert.True(t, strings.HasSuffix(text, "\n\n"))
}

func mustEvaluate(t *testing.T, name string) *modeling.ClassificationReport {
	t.Helper()
	r, err := modeling.Evaluate(name, []int{0, 1, 1, 0}, []int{0, 1, 0, 0})
	require.NoError(t, err)
	return r
}

func TestWriteDiagnostics_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := WriteDiagnostics(filepath.Join(blocker, "texto.txt"), &Report{}, nil)
	assert.Error(t, err)
}

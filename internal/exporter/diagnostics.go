package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"prfcli/internal/dataprocessing"
	apperrors "prfcli/internal/errors"
	"prfcli/internal/files"
	"prfcli/internal/modeling"
	"prfcli/internal/statistics"
	"prfcli/pkg/contracts/domain"
)

// Diagnostics section names, in output order
const (
	SectionIngestion         = "INGESTION"
	SectionCleaning          = "CLEANING"
	SectionWarnings          = "WARNINGS"
	SectionNormality         = "NORMALITY"
	SectionCorrelation       = "CORRELATION"
	SectionTTest             = "T_TEST"
	SectionExploratory       = "EXPLORATORY"
	SectionMissingBefore     = "MISSING_BEFORE"
	SectionMissingAfter      = "MISSING_AFTER"
	SectionRowsRemaining     = "ROWS_REMAINING"
	SectionLogistic          = "LOGISTIC_REGRESSION"
	SectionForest            = "RANDOM_FOREST"
	SectionCrossValidation   = "CROSS_VALIDATION"
	SectionGridSearch        = "GRID_SEARCH"
	SectionFeatureImportance = "FEATURE_IMPORTANCE"
	SectionInterpretation    = "INTERPRETATION"
	SectionLimitations       = "LIMITATIONS"
	SectionImprovements      = "IMPROVEMENTS"
)

const notAvailable = "not available"

// Section is one named block of the diagnostics text
type Section struct {
	Name string
	Body string
}

// Report carries everything the diagnostics text describes. Nil parts
// render as "not available".
type Report struct {
	RunID       string
	Raw         *domain.RawTable
	CleanedRows int
	Normalize   *dataprocessing.NormalizeReport
	Warnings    *apperrors.Warnings
	Normality   []statistics.NormalityResult
	Correlation *statistics.CorrelationMatrix
	TTest       *statistics.TTestResult
	Exploratory *statistics.Exploratory
	Imputation  *dataprocessing.ImputationReport
	RowsModeled int
	RowsDropped int
	Model       *modeling.Result
	ModelErr    error
	Alpha       float64
}

// Sections renders every section in order.
func (r *Report) Sections() []Section {
	return []Section{
		{SectionIngestion, r.ingestion()},
		{SectionCleaning, r.cleaning()},
		{SectionWarnings, r.warnings()},
		{SectionNormality, r.normality()},
		{SectionCorrelation, r.correlation()},
		{SectionTTest, r.ttest()},
		{SectionExploratory, r.exploratory()},
		{SectionMissingBefore, r.missing(true)},
		{SectionMissingAfter, r.missing(false)},
		{SectionRowsRemaining, r.rowsRemaining()},
		{SectionLogistic, r.classification(func(m *modeling.Result) *modeling.ClassificationReport { return m.LogisticReport })},
		{SectionForest, r.classification(func(m *modeling.Result) *modeling.ClassificationReport { return m.ForestReport })},
		{SectionCrossValidation, r.crossValidation()},
		{SectionGridSearch, r.gridSearch()},
		{SectionFeatureImportance, r.featureImportance()},
		{SectionInterpretation, r.interpretation()},
		{SectionLimitations, limitations},
		{SectionImprovements, improvements},
	}
}

// RenderDiagnostics writes sections as "=== NAME ===\nbody\n\n".
func RenderDiagnostics(w io.Writer, sections []Section) error {
	for _, s := range sections {
		if _, err := fmt.Fprintf(w, "=== %s ===\n%s\n\n", s.Name, strings.TrimRight(s.Body, "\n")); err != nil {
			return err
		}
	}
	return nil
}

// WriteDiagnostics renders the report to path atomically.
func WriteDiagnostics(path string, r *Report, logger *slog.Logger) error {
	m := files.NewManager("", logger)
	sections := r.Sections()
	if err := m.WriteAtomic(path, func(w io.Writer) error {
		return RenderDiagnostics(w, sections)
	}); err != nil {
		return fmt.Errorf("failed to write diagnostics: %w", err)
	}
	if logger != nil {
		logger.Info("diagnostics written", slog.String("path", path), slog.Int("sections", len(sections)))
	}
	return nil
}

func (r *Report) ingestion() string {
	if r.Raw == nil {
		return notAvailable
	}
	var b strings.Builder
	if r.RunID != "" {
		fmt.Fprintf(&b, "Run %s\n", r.RunID)
	}
	total := 0
	for _, f := range r.Raw.Files {
		total += f.Rows
		fmt.Fprintf(&b, "%s (year %d): %d rows, %d skipped\n", f.Name, f.Year, f.Rows, f.Skipped)
	}
	fmt.Fprintf(&b, "Total: %d rows from %d files, %d columns", total, len(r.Raw.Files), len(r.Raw.Columns))
	return b.String()
}

func (r *Report) cleaning() string {
	if r.Normalize == nil {
		return notAvailable
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Cleaned rows: %d\n", r.CleanedRows)
	fmt.Fprintf(&b, "%-16s %8s %8s %10s %11s\n", "column", "valid", "missing", "unparsable", "zero-filled")
	for _, c := range r.Normalize.SortedColumns() {
		cr := r.Normalize.Columns[c]
		fmt.Fprintf(&b, "%-16s %8d %8d %10d %11d\n", c, cr.Valid, cr.Missing, cr.Unparsable, cr.ZeroFilled)
	}
	fmt.Fprintf(&b, "Invalid dates: %d", r.Normalize.DateInvalid)
	return b.String()
}

func (r *Report) warnings() string {
	if r.Warnings == nil || r.Warnings.Total() == 0 {
		return "none"
	}
	var b strings.Builder
	for _, sw := range r.Warnings.Schema {
		fmt.Fprintf(&b, "schema: %s (year %d) lacks column %q\n", sw.File, sw.Year, sw.Column)
	}
	if r.Warnings.SkippedRows > 0 {
		fmt.Fprintf(&b, "malformed rows skipped: %d\n", r.Warnings.SkippedRows)
	}
	for _, c := range sortedKeys(r.Warnings.ParseFailures) {
		fmt.Fprintf(&b, "unparsable values in %s: %d\n", c, r.Warnings.ParseFailures[c])
	}
	return b.String()
}

func (r *Report) normality() string {
	if len(r.Normality) == 0 {
		return notAvailable
	}
	alpha := r.alpha()
	var b strings.Builder
	fmt.Fprintf(&b, "Shapiro-Wilk (n = %d per column, alpha = %.2f)\n", r.Normality[0].N, alpha)
	for _, res := range r.Normality {
		verdict := "not normal"
		if res.Normal(alpha) {
			verdict = "normal"
		}
		fmt.Fprintf(&b, "%s: W=%.4f, p=%.4f -> %s\n", res.Column, res.W, res.P, verdict)
	}
	return b.String()
}

func (r *Report) alpha() float64 {
	if r.Alpha > 0 {
		return r.Alpha
	}
	return 0.05
}

func (r *Report) correlation() string {
	if r.Correlation == nil {
		return notAvailable
	}
	m := r.Correlation
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s", "")
	for _, c := range m.Columns {
		fmt.Fprintf(&b, " %15s", c)
	}
	b.WriteString("\n")
	for i, c := range m.Columns {
		fmt.Fprintf(&b, "%-16s", c)
		for j := range m.Columns {
			fmt.Fprintf(&b, " %15s", formatScore(m.Values[i][j]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Report) ttest() string {
	if r.TTest == nil {
		return notAvailable
	}
	t := r.TTest
	var b strings.Builder
	fmt.Fprintf(&b, "Deaths, weekend vs weekday (Welch)\n")
	fmt.Fprintf(&b, "weekend: n=%d mean=%.4f\n", t.NA, t.MeanA)
	fmt.Fprintf(&b, "weekday: n=%d mean=%.4f\n", t.NB, t.MeanB)
	if !t.Sufficient {
		b.WriteString("insufficient data for the test")
		return b.String()
	}
	fmt.Fprintf(&b, "T=%.4f, df=%.1f, p=%.4f", t.T, t.DF, t.P)
	return b.String()
}

func (r *Report) exploratory() string {
	if r.Exploratory == nil {
		return notAvailable
	}
	e := r.Exploratory
	var b strings.Builder
	b.WriteString("Yearly totals (accidents, deaths, severe injuries, severity):\n")
	for _, y := range e.Yearly {
		fmt.Fprintf(&b, "  %d: %d, %d, %d, %d\n", y.Year, y.Accidents, y.Fatalities, y.SevereInjuries, y.Severity)
	}
	fmt.Fprintf(&b, "Accidents with deaths: %d, without: %d\n", e.FatalityShare.WithDeaths, e.FatalityShare.WithoutDeaths)
	fmt.Fprintf(&b, "Weekend severity: %s\n", fiveNumber(e.WeekendSeverity))
	fmt.Fprintf(&b, "Weekday severity: %s\n", fiveNumber(e.WeekdaySeverity))
	writeRanking(&b, "Roads by severity", e.TopRoads)
	writeRanking(&b, "Municipalities by severity", e.TopMunicipalities)
	writeRanking(&b, "Accident types by count", e.TopTypes)
	writeRanking(&b, "Causes by count", e.TopCauses)
	return b.String()
}

func fiveNumber(f statistics.FiveNumber) string {
	if f.Count == 0 {
		return "no rows"
	}
	return fmt.Sprintf("n=%d mean=%.3f min=%g q1=%g median=%g q3=%g max=%g",
		f.Count, f.Mean, f.Min, f.Q1, f.Median, f.Q3, f.Max)
}

func writeRanking(b *strings.Builder, title string, ranked []statistics.Ranked) {
	fmt.Fprintf(b, "%s:\n", title)
	if len(ranked) == 0 {
		b.WriteString("  none\n")
		return
	}
	for i, r := range ranked {
		fmt.Fprintf(b, "  %2d. %s: %d\n", i+1, r.Key, r.Value)
	}
}

func (r *Report) missing(before bool) string {
	if r.Imputation == nil {
		return notAvailable
	}
	counts := r.Imputation.MissingAfter
	if before {
		counts = r.Imputation.MissingBefore
	}
	var b strings.Builder
	for _, c := range domain.FeatureColumns {
		fmt.Fprintf(&b, "%-16s %d\n", c, counts[c])
	}
	fmt.Fprintf(&b, "%-16s %d", domain.LabelColumn, 0)
	if !before {
		b.WriteString("\nMedians:")
		for _, c := range domain.FeatureColumns {
			m := r.Imputation.Medians[c]
			if m.Valid {
				fmt.Fprintf(&b, " %s=%g", c, m.Value)
			} else {
				fmt.Fprintf(&b, " %s=none", c)
			}
		}
	}
	return b.String()
}

func (r *Report) rowsRemaining() string {
	if r.Imputation == nil {
		return notAvailable
	}
	return fmt.Sprintf("Rows remaining after dropping incomplete rows: %d (dropped %d)", r.RowsModeled, r.RowsDropped)
}

func (r *Report) modelUnavailable() string {
	if r.ModelErr != nil {
		return "modeling failed: " + r.ModelErr.Error()
	}
	return notAvailable
}

func (r *Report) classification(pick func(*modeling.Result) *modeling.ClassificationReport) string {
	if r.Model == nil {
		return r.modelUnavailable()
	}
	rep := pick(r.Model)
	if rep == nil {
		return notAvailable
	}
	return rep.String()
}

func (r *Report) crossValidation() string {
	if r.Model == nil {
		return r.modelUnavailable()
	}
	var b strings.Builder
	for _, cv := range []*modeling.CVResult{r.Model.LogisticCV, r.Model.ForestCV} {
		if cv == nil {
			continue
		}
		fmt.Fprintf(&b, "%s: %s +/- %s (%d folds)\n", cv.Model, formatScore(cv.Mean), formatScore(cv.Std), cv.Folds)
	}
	if b.Len() == 0 {
		return notAvailable
	}
	return b.String()
}

func (r *Report) gridSearch() string {
	if r.Model == nil {
		return r.modelUnavailable()
	}
	g := r.Model.Grid
	if g == nil {
		return "skipped"
	}
	var b strings.Builder
	for _, c := range g.Candidates {
		fmt.Fprintf(&b, "max_depth=%s n_estimators=%d: %s +/- %s\n",
			c.DepthLabel(), c.NEstimators, formatScore(c.MeanScore), formatScore(c.StdScore))
	}
	fmt.Fprintf(&b, "Best random forest: {'max_depth': %s, 'n_estimators': %d}", g.Best.DepthLabel(), g.Best.NEstimators)
	return b.String()
}

func (r *Report) featureImportance() string {
	if r.Model == nil {
		return r.modelUnavailable()
	}
	var b strings.Builder
	for _, fi := range r.Model.Importances {
		fmt.Fprintf(&b, "%-16s %.4f\n", fi.Feature, fi.Importance)
	}
	return b.String()
}

func (r *Report) interpretation() string {
	if r.Model == nil || r.Model.LogisticCV == nil || r.Model.ForestCV == nil {
		return r.modelUnavailable()
	}
	top := modeling.TopFeatures(r.Model.Importances, 2)
	names := make([]string, len(top))
	for i, fi := range top {
		names[i] = fi.Feature
	}
	return fmt.Sprintf("Mean accuracy: logistic = %s, random forest = %s\nMost important features: %s",
		formatScore(r.Model.LogisticCV.Mean), formatScore(r.Model.ForestCV.Mean), strings.Join(names, ", "))
}

const limitations = `- Categorical variables (accident type, weather) are not used as features
- The classes are imbalanced
- The label is a deterministic function of two features, so accuracy overstates predictive value`

const improvements = `- Add more variables (weather, accident type)
- Try resampling for the minority class and gradient boosted trees`

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package statistics computes the descriptive and inferential results of a run:
// Shapiro-Wilk normality tests, the Pearson correlation matrix of the count
// columns, a Welch t-test of fatalities on weekends against weekdays, and the
// exploratory aggregates (yearly totals, monthly severity, rankings and
// density cells) shared by the diagnostics report, the workbook and the
// dashboard API.
package statistics

// Package exporter writes the outputs of an analysis run.
//
// CSVWriter streams CSV files into the results directory through an atomic
// temp-file rename. CleanedTableWriter builds on it to export the cleaned
// accident table in the layout LoadCleanedTable reads back.
//
// Report renders the diagnostics text, one "=== NAME ===" section per
// pipeline result, and WorkbookWriter exports the exploratory aggregates to
// an xlsx workbook with one sheet per table.
//
// Example usage:
//
//	csv := exporter.NewCSVWriter(paths, ',', logger)
//	rows, err := exporter.NewCleanedTableWriter(csv).Write(paths.CleanedTable, table)
//
//	err = exporter.WriteDiagnostics(paths.DiagnosticsFile, report, logger)
package exporter

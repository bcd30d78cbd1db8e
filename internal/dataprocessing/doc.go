// Package dataprocessing turns the yearly PRF accident extracts into the
// cleaned table and the model-ready feature matrix.
//
// # Data Flow
//
//	yearly CSVs → Ingest → RawTable → Clean → CleanedTable
//	CleanedTable → BuildFeatureFrame → ImputeMedian → DropIncomplete → Dataset
//
// Ingest unions the files of the input directory in file-name order. Rows
// with the wrong number of fields are skipped and counted per file.
//
// Clean coerces the typed columns. Numbers use a comma decimal separator and
// "(null)" marks missing cells. Fatality and severe-injury counts treat
// missing or unparsable cells as zero, while coordinates, km and the road
// number stay missing. Severity, month, weekday and the weekend flag are
// derived once here; the weekend flag comes from the weekday index, never
// from a localized name.
//
// ImputeMedian replaces missing feature cells with the column median of the
// whole frame before the train/test split.
package dataprocessing

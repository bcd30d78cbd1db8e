package dataprocessing

import (
	"context"
	"log/slog"

	apperrors "prfcli/internal/errors"
	"prfcli/internal/files"
	"prfcli/pkg/contracts/domain"
)

// IngestOptions configures discovery and parsing of the input directory
type IngestOptions struct {
	ExcludeMarker string
	Parser        ParserOptions
}

// Ingest discovers the yearly extracts of dir and unions them in file-name
// order, preserving row order within each file. Columns are the union of
// all headers in first-seen order; a record lacks the columns its file lacks.
func Ingest(ctx context.Context, dir string, opts IngestOptions) (*domain.RawTable, error) {
	logger := opts.Parser.Logger
	if logger == nil {
		logger = slog.Default()
	}

	found, err := files.NewDiscovery("").FindYearlyCSVFiles(dir, opts.ExcludeMarker)
	if err != nil {
		return nil, err
	}

	parser := NewParser(opts.Parser)
	table := &domain.RawTable{}
	seen := make(map[string]bool)

	for _, file := range found {
		header, records, stats, err := parser.ParseFile(ctx, file)
		if err != nil {
			return nil, err
		}

		present := make(map[string]bool, len(header))
		for _, col := range header {
			present[col] = true
			if !seen[col] {
				seen[col] = true
				table.Columns = append(table.Columns, col)
			}
		}
		for _, col := range domain.ExpectedColumns {
			if !present[col] {
				stats.MissingColumns = append(stats.MissingColumns, col)
			}
		}

		logger.Info("ingested yearly extract",
			slog.String("file", file.Name),
			slog.Int("year", file.Year),
			slog.Int("rows", stats.Rows),
			slog.Int("skipped", stats.Skipped),
			slog.Any("missing_columns", stats.MissingColumns))

		table.Records = append(table.Records, records...)
		table.Files = append(table.Files, stats)
	}

	return table, nil
}

// SchemaWarnings lists one warning per expected column missing from a file.
func SchemaWarnings(table *domain.RawTable) []apperrors.SchemaWarning {
	var out []apperrors.SchemaWarning
	for _, f := range table.Files {
		for _, col := range f.MissingColumns {
			out = append(out, apperrors.SchemaWarning{File: f.Name, Year: f.Year, Column: col})
		}
	}
	return out
}

package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"prfcli/pkg/contracts/domain"
)

// LoadCleanedTable reads a table previously written by the cleaned-table
// exporter. Typed columns are re-parsed and severity is recomputed from the
// two count columns; the exported gravidade value is ignored.
func LoadCleanedTable(ctx context.Context, path string, delimiter rune, logger *slog.Logger) (*domain.CleanedTable, error) {
	if logger == nil {
		logger = slog.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cleaned table: %w", err)
	}
	defer f.Close()

	parser := NewParser(ParserOptions{Delimiter: delimiter, Encoding: "utf-8", Logger: logger})
	header, records, stats, err := parser.Parse(ctx, f, path, 0)
	if err != nil {
		return nil, err
	}

	derived := make(map[string]bool, len(domain.DerivedColumns))
	for _, c := range domain.DerivedColumns {
		derived[c] = true
	}
	hasYear := false
	table := &domain.CleanedTable{}
	for _, col := range header {
		if col == domain.ColumnYear {
			hasYear = true
		}
		if !derived[col] {
			table.Columns = append(table.Columns, col)
		}
	}
	if !hasYear {
		return nil, fmt.Errorf("cleaned table %s has no %q column", path, domain.ColumnYear)
	}

	opts := CleanOptions{NullToken: "", DateLayouts: []string{"2006-01-02"}}
	report := newNormalizeReport()
	skipped := stats.Skipped

	table.Records = make([]domain.Accident, 0, len(records))
	for _, rec := range records {
		year, err := strconv.Atoi(strings.TrimSpace(rec.Fields[domain.ColumnYear]))
		if err != nil {
			skipped++
			continue
		}
		rec.Year = year
		a := cleanRecord(rec, opts, report)
		for _, c := range domain.DerivedColumns {
			delete(a.Fields, c)
		}
		table.Records = append(table.Records, a)
	}

	logger.Info("loaded cleaned table",
		slog.String("path", path),
		slog.Int("rows", len(table.Records)),
		slog.Int("skipped", skipped))
	return table, nil
}

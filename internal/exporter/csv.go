package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"prfcli/internal/config"
	"prfcli/internal/files"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths     *config.Paths
	delimiter rune
	files     *files.Manager
	logger    *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. A zero delimiter means ','.
func NewCSVWriter(paths *config.Paths, delimiter rune, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &CSVWriter{
		paths:     paths,
		delimiter: delimiter,
		files:     files.NewManager("", logger),
		logger:    logger,
	}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel
}

// RowFunc emits rows one at a time through emit.
type RowFunc func(emit func(record []string) error) error

// WriteCSV writes headers and records to filePath, replacing any existing file
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	return w.WriteStream(filePath, options.Headers, options.BOMPrefix, func(emit func([]string) error) error {
		for _, record := range options.Records {
			if err := emit(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteStream writes the header and then every row produced by rows. The
// file only appears once all rows have been written.
func (w *CSVWriter) WriteStream(filePath string, headers []string, bom bool, rows RowFunc) error {
	fullPath := w.resolvePath(filePath)
	count := 0

	err := w.files.WriteAtomic(fullPath, func(out io.Writer) error {
		if bom {
			if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
				return fmt.Errorf("failed to write BOM: %w", err)
			}
		}
		writer := csv.NewWriter(out)
		writer.Comma = w.delimiter

		if len(headers) > 0 {
			if err := writer.Write(headers); err != nil {
				return fmt.Errorf("failed to write headers: %w", err)
			}
		}
		err := rows(func(record []string) error {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record %d: %w", count, err)
			}
			count++
			return nil
		})
		if err != nil {
			return err
		}
		writer.Flush()
		return writer.Error()
	})
	if err != nil {
		return fmt.Errorf("failed to write CSV %s: %w", fullPath, err)
	}

	w.logger.Info("CSV file written",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", count))
	return nil
}

// resolvePath places relative paths in the results directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}

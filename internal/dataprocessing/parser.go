package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"prfcli/internal/files"
	"prfcli/pkg/contracts/domain"
)

// Parser reads one yearly extract into raw records
type Parser struct {
	opts   ParserOptions
	logger *slog.Logger
}

// NewParser creates a parser; zero-valued options fall back to defaults
func NewParser(opts ParserOptions) *Parser {
	def := DefaultParserOptions()
	if opts.Delimiter == 0 {
		opts.Delimiter = def.Delimiter
	}
	if opts.Encoding == "" {
		opts.Encoding = def.Encoding
	}
	if opts.MaxLoggedSkips == 0 {
		opts.MaxLoggedSkips = def.MaxLoggedSkips
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{opts: opts, logger: logger}
}

// decoder wraps r so that it yields UTF-8
func (p *Parser) decoder(r io.Reader) (io.Reader, error) {
	switch strings.ToLower(p.opts.Encoding) {
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "utf-8", "utf8":
		return r, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", p.opts.Encoding)
	}
}

// ParseFile reads every well-formed row of file. Rows whose field count
// differs from the header, or that the CSV reader rejects, are skipped and
// counted in the returned stats.
func (p *Parser) ParseFile(ctx context.Context, file files.FileInfo) ([]string, []domain.RawRecord, domain.FileStats, error) {
	stats := domain.FileStats{Name: file.Name, Year: file.Year}

	f, err := os.Open(file.Path)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer f.Close()

	return p.Parse(ctx, f, file.Name, file.Year)
}

// Parse reads an extract from r. source and year are stamped on every record.
func (p *Parser) Parse(ctx context.Context, r io.Reader, source string, year int) ([]string, []domain.RawRecord, domain.FileStats, error) {
	stats := domain.FileStats{Name: source, Year: year}

	decoded, err := p.decoder(r)
	if err != nil {
		return nil, nil, stats, err
	}

	reader := csv.NewReader(decoded)
	reader.Comma = p.opts.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, stats, fmt.Errorf("%s: empty file", source)
		}
		return nil, nil, stats, fmt.Errorf("%s: failed to read header: %w", source, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []domain.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, stats, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, nil, stats, fmt.Errorf("%s: read failed: %w", source, err)
			}
			p.skip(&stats, source, perr.StartLine, err.Error())
			continue
		}
		line, _ := reader.FieldPos(0)
		if len(row) != len(header) {
			p.skip(&stats, source, line, fmt.Sprintf("expected %d fields, got %d", len(header), len(row)))
			continue
		}

		fields := make(map[string]string, len(header))
		for i, col := range header {
			fields[col] = row[i]
		}
		records = append(records, domain.RawRecord{
			Year:   year,
			Source: source,
			Line:   line,
			Fields: fields,
		})
	}

	stats.Rows = len(records)
	return header, records, stats, nil
}

func (p *Parser) skip(stats *domain.FileStats, source string, line int, reason string) {
	stats.Skipped++
	if len(stats.SkippedLines) < p.opts.MaxLoggedSkips {
		stats.SkippedLines = append(stats.SkippedLines, line)
		p.logger.Warn("skipping malformed row",
			slog.String("file", source),
			slog.Int("line", line),
			slog.String("reason", reason))
	}
}

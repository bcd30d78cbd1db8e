package dataprocessing

import (
	"log/slog"

	"prfcli/pkg/contracts/domain"
)

// ParserOptions configures how a yearly extract is decoded
type ParserOptions struct {
	// Delimiter separates fields; the PRF extracts use ';'
	Delimiter rune

	// Encoding names the byte encoding: latin1, iso-8859-1, windows-1252 or utf-8
	Encoding string

	// MaxLoggedSkips bounds how many skipped line numbers are kept per file
	MaxLoggedSkips int

	Logger *slog.Logger
}

// CleanOptions configures normalization and derivation
type CleanOptions struct {
	// NullToken is the literal marking a missing cell, "(null)" in the extracts
	NullToken string

	// DateLayouts are tried in order when parsing the date column
	DateLayouts []string

	// WeatherFallback replaces a missing weather condition; empty leaves it blank
	WeatherFallback string

	Logger *slog.Logger
}

// DefaultParserOptions returns the options matching the published extracts
func DefaultParserOptions() ParserOptions {
	return ParserOptions{
		Delimiter:      ';',
		Encoding:       "latin1",
		MaxLoggedSkips: 5,
	}
}

// DefaultCleanOptions returns default cleaning options
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		NullToken:       "(null)",
		DateLayouts:     []string{"2006-01-02", "02/01/2006", "02/01/06"},
		WeatherFallback: "Ignorado",
	}
}

// countColumns are coerced to non-negative integers with missing as zero
var countColumns = []string{domain.ColumnFatalities, domain.ColumnSevereInjuries}

// floatColumns keep missing as missing
var floatColumns = []string{
	domain.ColumnLatitude,
	domain.ColumnLongitude,
	domain.ColumnKilometre,
	domain.ColumnRoadNumber,
}

package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the class of a pipeline error
type ErrorType string

const (
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeParsing  ErrorType = "PARSING"
	ErrTypeSchema   ErrorType = "SCHEMA"
	ErrTypeModelFit ErrorType = "MODEL_FIT"
	ErrTypeStorage  ErrorType = "STORAGE"
)

// ConfigurationError reports a missing precondition of a run (input directory,
// matching files, file naming). It is fatal and aborts before any processing.
type ConfigurationError struct {
	Precondition string
	Path         string
	Cause        error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("[%s] %s", ErrTypeConfig, e.Precondition)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(precondition, path string, cause error) *ConfigurationError {
	return &ConfigurationError{Precondition: precondition, Path: path, Cause: cause}
}

// ParseWarning describes a single cell that failed numeric or date parsing.
// Parse warnings are aggregated into counts and never abort a run.
type ParseWarning struct {
	Column string
	Line   int
	Source string
	Raw    string
}

// Error implements the error interface
func (w ParseWarning) Error() string {
	return fmt.Sprintf("[%s] %s:%d column %s: cannot parse %q", ErrTypeParsing, w.Source, w.Line, w.Column, w.Raw)
}

// SchemaWarning reports an expected column absent from one yearly file.
type SchemaWarning struct {
	File   string
	Year   int
	Column string
}

// Error implements the error interface
func (w SchemaWarning) Error() string {
	return fmt.Sprintf("[%s] %s (year %d) has no column %q", ErrTypeSchema, w.File, w.Year, w.Column)
}

// ModelFitError reports a failure of the modeling stage. Results computed
// before modeling stay valid.
type ModelFitError struct {
	Model  string
	Reason string
	Cause  error
}

// Error implements the error interface
func (e *ModelFitError) Error() string {
	msg := fmt.Sprintf("[%s] %s", ErrTypeModelFit, e.Reason)
	if e.Model != "" {
		msg = fmt.Sprintf("[%s] %s: %s", ErrTypeModelFit, e.Model, e.Reason)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *ModelFitError) Unwrap() error {
	return e.Cause
}

// NewModelFitError creates a model fit error
func NewModelFitError(model, reason string, cause error) *ModelFitError {
	return &ModelFitError{Model: model, Reason: reason, Cause: cause}
}

// IsConfigurationError reports whether err wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsModelFitError reports whether err wraps a ModelFitError
func IsModelFitError(err error) bool {
	var target *ModelFitError
	return errors.As(err, &target)
}

// Warnings aggregates recoverable problems of a run for the diagnostics output.
type Warnings struct {
	Schema        []SchemaWarning
	ParseFailures map[string]int
	SkippedRows   int
}

// NewWarnings creates an empty warnings aggregate
func NewWarnings() *Warnings {
	return &Warnings{ParseFailures: make(map[string]int)}
}

// AddSchema records a schema warning
func (w *Warnings) AddSchema(sw SchemaWarning) {
	w.Schema = append(w.Schema, sw)
}

// AddParseFailures adds n unparsable cells for a column
func (w *Warnings) AddParseFailures(column string, n int) {
	if n == 0 {
		return
	}
	w.ParseFailures[column] += n
}

// Total returns the number of recorded warnings, counting each unparsable cell
func (w *Warnings) Total() int {
	total := len(w.Schema) + w.SkippedRows
	for _, n := range w.ParseFailures {
		total += n
	}
	return total
}

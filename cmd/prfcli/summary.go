package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	apperrors "prfcli/internal/errors"
	"prfcli/internal/operations"
)

var (
	okColor    = color.New(color.FgGreen, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	errColor   = color.New(color.FgRed, color.Bold)
	skipColor  = color.New(color.FgHiBlack)
	titleColor = color.New(color.FgCyan, color.Bold)
)

func stepColor(status operations.StepStatus) *color.Color {
	switch status {
	case operations.StepStatusCompleted:
		return okColor
	case operations.StepStatusFailed:
		return errColor
	case operations.StepStatusSkipped:
		return skipColor
	default:
		return warnColor
	}
}

// printSummary writes the per-step outcome, warnings and outputs of a run
func printSummary(w io.Writer, resp *operations.OperationResponse) {
	titleColor.Fprintf(w, "run %s: %s in %s\n", resp.ID, resp.Status, resp.Duration.Round(time.Millisecond))
	for _, s := range resp.Steps {
		stepColor(s.Status).Fprintf(w, "  %-10s", s.Status)
		fmt.Fprintf(w, " %-28s %s", s.Name, s.Duration.Round(time.Millisecond))
		if s.Message != "" {
			fmt.Fprintf(w, "  %s", s.Message)
		}
		fmt.Fprintln(w)
	}

	data := resp.Data
	if data == nil {
		return
	}
	if data.Warnings != nil && data.Warnings.Total() > 0 {
		warnColor.Fprintf(w, "warnings: %d", data.Warnings.Total())
		fmt.Fprintf(w, " (schema %d, skipped rows %d, parse failures %d columns)\n",
			len(data.Warnings.Schema), data.Warnings.SkippedRows, len(data.Warnings.ParseFailures))
	}
	if data.ModelErr != nil {
		warnColor.Fprintf(w, "modeling failed: %v\n", data.ModelErr)
		fmt.Fprintln(w, "  statistics and the diagnostics text were still produced")
	}
	if data.Model != nil && data.Model.LogisticReport != nil && data.Model.ForestReport != nil {
		fmt.Fprintf(w, "test accuracy: logistic %.3f, random forest %.3f\n",
			data.Model.LogisticReport.Accuracy, data.Model.ForestReport.Accuracy)
	}
	for _, out := range data.Outputs {
		fmt.Fprintf(w, "  wrote %s\n", out)
	}
}

// printError explains a failure; configuration errors name the missing precondition
func printError(w io.Writer, err error) {
	var cfgErr *apperrors.ConfigurationError
	if errors.As(err, &cfgErr) {
		errColor.Fprint(w, "configuration error: ")
		fmt.Fprintln(w, cfgErr.Precondition)
		if cfgErr.Path != "" {
			fmt.Fprintf(w, "  path: %s\n", cfgErr.Path)
		}
		if cfgErr.Cause != nil {
			fmt.Fprintf(w, "  cause: %v\n", cfgErr.Cause)
		}
		return
	}
	errColor.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}

// finish prints the run summary, if any, and passes err through
func finish(w io.Writer, resp *operations.OperationResponse, err error) error {
	if resp != nil {
		printSummary(w, resp)
	}
	return err
}

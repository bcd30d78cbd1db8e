package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths resolves every file a run reads or writes.
// Relative locations are resolved against the working directory.
type Paths struct {
	DataDir         string
	ResultsDir      string
	LogsDir         string
	CleanedTable    string
	DiagnosticsFile string
	WorkbookFile    string
	MetricsFile     string
	ModelArtifact   string
}

// NewPaths derives the run paths from configuration
func NewPaths(cfg *Config) *Paths {
	results := cfg.Output.ResultsDir
	return &Paths{
		DataDir:         cfg.Input.DataDir,
		ResultsDir:      results,
		LogsDir:         filepath.Dir(cfg.Logging.FilePath),
		CleanedTable:    resolveIn(results, cfg.Output.CleanedTable),
		DiagnosticsFile: resolveIn(results, cfg.Output.DiagnosticsFile),
		WorkbookFile:    resolveIn(results, cfg.Output.WorkbookFile),
		MetricsFile:     resolveIn(results, cfg.Output.MetricsFile),
		ModelArtifact:   resolveIn(results, cfg.Output.ModelArtifact),
	}
}

// resolveIn places a relative file name inside dir; empty stays empty
func resolveIn(dir, name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// EnsureDirectories creates the output directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ResultsDir, p.LogsDir} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the path for a report file in the results directory
func (p *Paths) GetReportPath(filename string) string {
	return resolveIn(p.ResultsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Path resolution",
		slog.String("data_dir", p.DataDir),
		slog.String("results_dir", p.ResultsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("cleaned_table", p.CleanedTable),
		slog.String("diagnostics_file", p.DiagnosticsFile),
		slog.String("workbook_file", p.WorkbookFile),
		slog.String("metrics_file", p.MetricsFile),
		slog.String("model_artifact", p.ModelArtifact))
}

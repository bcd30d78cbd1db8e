package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"prfcli/internal/config"
	"prfcli/internal/infrastructure"
	"prfcli/pkg/contracts"
)

// runtimeEnv carries what every command needs once flags are parsed
type runtimeEnv struct {
	configFile string
	dataDir    string
	resultsDir string
	logLevel   string
	logOutput  string
	logFile    string
	traces     string
	noColor    bool

	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	metrics *infrastructure.Metrics
	tracing *infrastructure.Tracing
}

func newRootCmd(env *runtimeEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "prfcli",
		Short: "PRF traffic accident analysis pipeline",
		Long: `prfcli ingests the yearly PRF accident extracts, cleans them into a single
table, computes descriptive and inferential statistics, trains severity
classifiers and serves a dashboard API over the cleaned data.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&env.configFile, "config", "", "YAML configuration file (default: PRF_CONFIG or ./prfcli.yaml)")
	flags.StringVar(&env.dataDir, "data-dir", "", "directory holding the yearly extracts")
	flags.StringVar(&env.resultsDir, "results-dir", "", "directory receiving every output")
	flags.StringVar(&env.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&env.logOutput, "log-output", "", "log destination (console|file|both)")
	flags.StringVar(&env.logFile, "log-file", "", "log file path")
	flags.StringVar(&env.traces, "traces", "", "trace exporter (none|stdout|file)")
	flags.BoolVar(&env.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newAnalyzeCmd(env),
		newCleanCmd(env),
		newModelCmd(env),
		newScoreCmd(env),
		newServeCmd(env),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger,
// metrics registry and tracer.
func (e *runtimeEnv) setup(cmd *cobra.Command) error {
	if e.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(e.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Input.DataDir = e.dataDir
	}
	if flags.Changed("results-dir") {
		cfg.Output.ResultsDir = e.resultsDir
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = e.logLevel
	}
	if flags.Changed("log-output") {
		cfg.Logging.Output = e.logOutput
	}
	if flags.Changed("log-file") {
		cfg.Logging.FilePath = e.logFile
	}
	if flags.Changed("traces") {
		cfg.Telemetry.TraceExporter = e.traces
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	e.cfg = cfg
	e.paths = config.NewPaths(cfg)

	// Logs go to stderr so stdout stays readable for the run summary.
	logger, err := infrastructure.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	e.logger = logger
	e.paths.LogPathResolution(logger)

	e.metrics = infrastructure.NewMetrics()
	e.tracing, err = infrastructure.InitializeTracing(cfg.Telemetry, logger)
	return err
}

// close flushes traces and releases the log file
func (e *runtimeEnv) close(ctx context.Context) {
	if err := e.tracing.Shutdown(ctx); err != nil && e.logger != nil {
		infrastructure.WithError(e.logger, err).Warn("failed to flush traces")
	}
	_ = infrastructure.CloseLogFile()
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	env := &runtimeEnv{}
	root := newRootCmd(env)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	env.close(context.WithoutCancel(ctx))
	if err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

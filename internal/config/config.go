package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by the application.
const EnvPrefix = "PRF"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Modeling  ModelingConfig  `yaml:"modeling" envconfig:"MODELING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// InputConfig describes the yearly extracts and how to read them
type InputConfig struct {
	DataDir       string   `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ExcludeMarker string   `yaml:"exclude_marker" envconfig:"EXCLUDE_MARKER"`
	Delimiter     string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	Encoding      string   `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=latin1 iso-8859-1 windows-1252 utf-8"`
	NullToken     string   `yaml:"null_token" envconfig:"NULL_TOKEN"`
	DateColumn    string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	DateLayouts   []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS" validate:"min=1"`
}

// OutputConfig names the files written by a run
type OutputConfig struct {
	ResultsDir      string `yaml:"results_dir" envconfig:"RESULTS_DIR" validate:"required"`
	CleanedTable    string `yaml:"cleaned_table" envconfig:"CLEANED_TABLE" validate:"required"`
	Delimiter       string `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	DiagnosticsFile string `yaml:"diagnostics_file" envconfig:"DIAGNOSTICS_FILE" validate:"required"`
	WorkbookFile    string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	MetricsFile     string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	ModelArtifact   string `yaml:"model_artifact" envconfig:"MODEL_ARTIFACT"`
}

// ModelingConfig contains split, scaling and classifier parameters
type ModelingConfig struct {
	TestFraction    float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" validate:"gt=0,lt=1"`
	Seed            int64   `yaml:"seed" envconfig:"SEED"`
	CVFolds         int     `yaml:"cv_folds" envconfig:"CV_FOLDS" validate:"min=2"`
	GridFolds       int     `yaml:"grid_folds" envconfig:"GRID_FOLDS" validate:"min=2"`
	NormalitySample int     `yaml:"normality_sample" envconfig:"NORMALITY_SAMPLE" validate:"min=3,max=5000"`
	LogisticMaxIter int     `yaml:"logistic_max_iter" envconfig:"LOGISTIC_MAX_ITER" validate:"min=1"`
	LogisticC       float64 `yaml:"logistic_c" envconfig:"LOGISTIC_C" validate:"gt=0"`
	ForestTrees     int     `yaml:"forest_trees" envconfig:"FOREST_TREES" validate:"min=1"`
	ForestMaxDepth  int     `yaml:"forest_max_depth" envconfig:"FOREST_MAX_DEPTH" validate:"min=0"`
	GridTrees       []int   `yaml:"grid_trees" envconfig:"GRID_TREES" validate:"min=1,dive,min=1"`
	GridDepths      []int   `yaml:"grid_depths" envconfig:"GRID_DEPTHS" validate:"min=1,dive,min=0"`
	SkipGridSearch  bool    `yaml:"skip_grid_search" envconfig:"SKIP_GRID_SEARCH"`
}

// ServerConfig contains dashboard HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"gt=0"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"min=1"`
}

// TelemetryConfig contains tracing configuration
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=none stdout file"`
	TraceFile     string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/prfcli.log",
		},
		Input: InputConfig{
			DataDir:       "dados",
			ExcludeMarker: "Radares",
			Delimiter:     ";",
			Encoding:      "latin1",
			NullToken:     "(null)",
			DateColumn:    "data_inversa",
			DateLayouts:   []string{"2006-01-02", "02/01/2006", "02/01/06"},
		},
		Output: OutputConfig{
			ResultsDir:      "resultados",
			CleanedTable:    "df_limpo.csv",
			Delimiter:       ",",
			DiagnosticsFile: "texto_analise.txt",
			WorkbookFile:    "exploratorio.xlsx",
			MetricsFile:     "metrics.prom",
		},
		Modeling: ModelingConfig{
			TestFraction:    0.3,
			Seed:            42,
			CVFolds:         5,
			GridFolds:       3,
			NormalitySample: 500,
			LogisticMaxIter: 1000,
			LogisticC:       1.0,
			ForestTrees:     100,
			ForestMaxDepth:  0,
			GridTrees:       []int{50, 100},
			GridDepths:      []int{5, 10, 0},
		},
		Server: ServerConfig{
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			TraceFile:     "logs/traces.json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// PRF_* environment variables, in increasing order of precedence.
// An empty configFile falls back to PRF_CONFIG and then to well-known locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// Fields without a matching variable are left untouched, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Separator returns the field delimiter of the yearly extracts
func (c InputConfig) Separator() rune {
	return firstRune(c.Delimiter, ';')
}

// Separator returns the field delimiter of the cleaned table
func (c OutputConfig) Separator() rune {
	return firstRune(c.Delimiter, ',')
}

func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}

// Validate checks field constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		return path
	}

	locations := []string{
		"prfcli.yaml",
		"configs/prfcli.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

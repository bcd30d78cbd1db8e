// Package config provides centralized configuration management for prfcli.
// It loads configuration from multiple sources, validates it, and resolves the
// file locations a run reads from and writes to.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file (--config, PRF_CONFIG, ./prfcli.yaml or ./configs/prfcli.yaml)
//	3. Environment variables with the PRF_ prefix
//	4. Command line flags applied by cmd/prfcli
//
// # Environment Variables
//
// Nested sections map to underscore-separated names:
//
//	PRF_INPUT_DATA_DIR=dados
//	PRF_INPUT_ENCODING=latin1
//	PRF_OUTPUT_RESULTS_DIR=resultados
//	PRF_MODELING_TEST_FRACTION=0.3
//	PRF_MODELING_GRID_TREES=50,100
//	PRF_LOGGING_LEVEL=debug
//
// # Validation
//
// Load validates the merged configuration with go-playground/validator struct
// tags; for example the test fraction must lie strictly between 0 and 1 and
// cross-validation needs at least two folds.
package config

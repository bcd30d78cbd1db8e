package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/internal/shared/testutil"
	"prfcli/pkg/contracts"
)

type cliRun struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliRun {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"--no-color", "--log-file", filepath.Join(t.TempDir(), "logs", "prfcli.log")}
	code := execute(context.Background(), append(args, base...), &stdout, &stderr)
	return cliRun{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestCLI_CleanThenModelThenScore(t *testing.T) {
	data := testutil.WriteExtracts(t, true)
	results := filepath.Join(t.TempDir(), "resultados")

	run := runCLI(t, "clean", "--data-dir", data, "--results-dir", results)
	require.Equal(t, 0, run.code, run.stderr)
	assert.Contains(t, run.stdout, "completed")
	assert.FileExists(t, filepath.Join(results, "df_limpo.csv"))
	assert.NoFileExists(t, filepath.Join(results, "texto_analise.txt"))

	artifact := filepath.Join(results, "modelo.msgpack")
	run = runCLI(t, "model", "--results-dir", results, "--trees", "5", "--skip-grid-search", "--artifact", artifact)
	require.Equal(t, 0, run.code, run.stderr)
	assert.Contains(t, run.stdout, "test accuracy")
	assert.FileExists(t, filepath.Join(results, "texto_analise.txt"))
	assert.FileExists(t, filepath.Join(results, "exploratorio.xlsx"))
	assert.FileExists(t, artifact)

	run = runCLI(t, "score", "--results-dir", results, "--artifact", artifact)
	require.Equal(t, 0, run.code, run.stderr)
	assert.Contains(t, run.stdout, "scored 30 rows")
	assert.FileExists(t, filepath.Join(results, "predicoes.csv"))
}

func TestCLI_AnalyzeModelFailureExitsZero(t *testing.T) {
	data := testutil.WriteExtracts(t, false)
	results := filepath.Join(t.TempDir(), "resultados")

	run := runCLI(t, "analyze", "--data-dir", data, "--results-dir", results, "--trees", "5", "--skip-grid-search")

	assert.Equal(t, 0, run.code, run.stderr)
	assert.Contains(t, run.stdout, "modeling failed")
	assert.FileExists(t, filepath.Join(results, "texto_analise.txt"))
	assert.FileExists(t, filepath.Join(results, "metrics.prom"))
}

func TestCLI_Failures(t *testing.T) {
	results := filepath.Join(t.TempDir(), "resultados")

	tests := []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{
			name:       "missing input directory",
			args:       []string{"analyze", "--data-dir", filepath.Join(t.TempDir(), "absent"), "--results-dir", results},
			wantStderr: "configuration error",
		},
		{
			name:       "missing cleaned table",
			args:       []string{"model", "--results-dir", results, "--table", filepath.Join(t.TempDir(), "absent.csv")},
			wantStderr: "error:",
		},
		{
			name:       "serve without table",
			args:       []string{"serve", "--results-dir", results},
			wantStderr: "clean command first",
		},
		{
			name:       "invalid flag value",
			args:       []string{"analyze", "--log-level", "loud"},
			wantStderr: "validation",
		},
		{
			name:       "unknown command",
			args:       []string{"publish"},
			wantStderr: "unknown command",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := runCLI(t, tt.args...)
			assert.Equal(t, 1, run.code)
			assert.Contains(t, run.stderr, tt.wantStderr)
		})
	}
}

func TestCLI_Version(t *testing.T) {
	run := runCLI(t, "--version")
	assert.Equal(t, 0, run.code)
	assert.Contains(t, run.stdout, contracts.Version)
}

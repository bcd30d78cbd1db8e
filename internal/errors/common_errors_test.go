package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationError(t *testing.T) {
	cause := fmt.Errorf("stat dados: no such file or directory")
	err := NewConfigurationError("input directory does not exist", "dados", cause)

	assert.Contains(t, err.Error(), "[CONFIG]")
	assert.Contains(t, err.Error(), "input directory does not exist")
	assert.Contains(t, err.Error(), "(dados)")
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("ingest: %w", err)
	assert.True(t, IsConfigurationError(wrapped))
	assert.False(t, IsModelFitError(wrapped))
}

func TestModelFitError(t *testing.T) {
	tests := []struct {
		name string
		err  *ModelFitError
		want string
	}{
		{
			name: "with model",
			err:  NewModelFitError("random_forest", "label has a single class", nil),
			want: "[MODEL_FIT] random_forest: label has a single class",
		},
		{
			name: "without model",
			err:  NewModelFitError("", "not enough rows", nil),
			want: "[MODEL_FIT] not enough rows",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, IsModelFitError(fmt.Errorf("modeling: %w", tt.err)))
		})
	}
}

func TestWarnings(t *testing.T) {
	w := NewWarnings()
	w.AddSchema(SchemaWarning{File: "datatran2010.csv", Year: 2010, Column: "km"})
	w.AddParseFailures("mortos", 3)
	w.AddParseFailures("latitude", 0)
	w.AddParseFailures("mortos", 2)
	w.SkippedRows = 4

	assert.Equal(t, 5, w.ParseFailures["mortos"])
	_, hasLatitude := w.ParseFailures["latitude"]
	assert.False(t, hasLatitude)
	assert.Equal(t, 10, w.Total())
	assert.Contains(t, w.Schema[0].Error(), `has no column "km"`)
}

func TestParseWarning(t *testing.T) {
	w := ParseWarning{Column: "mortos", Line: 7, Source: "datatran2021.csv", Raw: "(null)"}
	assert.Equal(t, `[PARSING] datatran2021.csv:7 column mortos: cannot parse "(null)"`, w.Error())
}

package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCleanedTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "df_limpo.csv")
	content := "id,mortos,feridos_graves,latitude,longitude,data_inversa,ano,gravidade,mes,dia_semana,fim_de_semana\n" +
		"1,1,2,-23.5,-46.6,2021-01-02,2021,99,1,Saturday,true\n" +
		"2,0,0,,,,2020,0,,,\n" +
		"3,0,0,,,,not-a-year,0,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := LoadCleanedTable(context.Background(), path, ',', nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "mortos", "feridos_graves", "latitude", "longitude", "data_inversa"}, table.Columns)
	require.Len(t, table.Records, 2)

	a := table.Records[0]
	assert.Equal(t, 2021, a.Year)
	assert.Equal(t, 3, a.Severity, "severity is recomputed, not read")
	assert.InDelta(t, -23.5, a.Latitude.Value, 1e-12)
	assert.True(t, a.IsWeekend.Value)
	assert.Equal(t, 1, a.Month.Value)
	assert.NotContains(t, a.Fields, "gravidade")

	b := table.Records[1]
	assert.Equal(t, 2020, b.Year)
	assert.False(t, b.HasCoordinates())
	assert.Nil(t, b.Date)
	assert.Equal(t, []int{2020, 2021}, table.Years())
}

func TestLoadCleanedTable_MissingYearColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("mortos\n1\n"), 0644))
	_, err := LoadCleanedTable(context.Background(), path, ',', nil)
	assert.Error(t, err)
}

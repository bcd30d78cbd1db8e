package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ExtractHeader is the column layout of the generated yearly extracts
const ExtractHeader = "id;data_inversa;dia_semana;uf;br;km;municipio;causa_acidente;tipo_acidente;condicao_metereologica;mortos;feridos_graves;latitude;longitude"

// ExtractYears are the years WriteExtracts generates
var ExtractYears = []int{2019, 2020, 2021}

// WriteYear writes ten ';'-separated accidents for one year into dir. With
// severe set, half of the rows reach the high-severity label; otherwise no
// row has victims. The last row of 2021 lacks a latitude.
func WriteYear(t *testing.T, dir string, year int, severe bool) string {
	t.Helper()
	lines := []string{ExtractHeader}
	for i := 0; i < 10; i++ {
		deaths, injuries := i%3, i%2
		if !severe {
			deaths, injuries = 0, 0
		}
		lat := fmt.Sprintf("-2%d,%d", i%4, i)
		if year == 2021 && i == 9 {
			lat = "(null)"
		}
		lines = append(lines, fmt.Sprintf("%d%02d;%d-03-%02d;x;MG;%d;%d,5;CIDADE %d;Causa %d;Tipo %d;(null);%d;%d;%s;-4%d,%d",
			year, i, year, i+1, 40+i%3, i, i%4, i%2, i%3, deaths, injuries, lat, i%5, i))
	}
	path := filepath.Join(dir, fmt.Sprintf("datatran%d.csv", year))
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write extract: %v", err)
	}
	return path
}

// WriteExtracts creates a data directory under t.TempDir holding one extract
// per ExtractYears entry and returns it.
func WriteExtracts(t *testing.T, severe bool) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "dados")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}
	for _, year := range ExtractYears {
		WriteYear(t, dir, year, severe)
	}
	return dir
}

// Rows of each scenario extract that carry a bad cell
const (
	ScenarioNullFatalityRow  = 0
	ScenarioCommaLatitudeRow = 1
	ScenarioBlankDateRow     = 2
)

// ScenarioLatitude is the comma-decimal latitude written on ScenarioCommaLatitudeRow
const ScenarioLatitude = -19.75

// WriteScenarioYear writes ten accidents for one year with one bad cell of
// each kind: an unusable fatality count, a comma-decimal latitude and a blank
// date. The last year spells the unusable count as garbage instead of the
// null token.
func WriteScenarioYear(t *testing.T, dir string, year int) string {
	t.Helper()
	lines := []string{ExtractHeader}
	for i := 0; i < 10; i++ {
		deaths := fmt.Sprint(i % 3)
		lat := fmt.Sprintf("-2%d,5", i%4)
		date := fmt.Sprintf("%d-06-%02d", year, i+1)
		switch i {
		case ScenarioNullFatalityRow:
			deaths = "(null)"
			if year == ExtractYears[len(ExtractYears)-1] {
				deaths = "n/d"
			}
		case ScenarioCommaLatitudeRow:
			lat = "-19,75"
		case ScenarioBlankDateRow:
			date = ""
		}
		lines = append(lines, fmt.Sprintf("%d%02d;%s;x;BA;116;%d,0;CIDADE %d;Causa;Tipo;Sol;%s;%d;%s;-40,%d",
			year, i, date, i, i%3, deaths, i%2, lat, i))
	}
	path := filepath.Join(dir, fmt.Sprintf("datatran%d.csv", year))
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write extract: %v", err)
	}
	return path
}

// WriteScenarioExtracts creates a data directory holding one scenario extract
// per ExtractYears entry and returns it.
func WriteScenarioExtracts(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "dados")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create data dir: %v", err)
	}
	for _, year := range ExtractYears {
		WriteScenarioYear(t, dir, year)
	}
	return dir
}

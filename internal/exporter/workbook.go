package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"prfcli/internal/files"
	"prfcli/internal/modeling"
	"prfcli/internal/statistics"
)

// Workbook sheet names
const (
	SheetYearly         = "Anual"
	SheetMonthly        = "Mensal"
	SheetRoads          = "Rodovias"
	SheetMunicipalities = "Municipios"
	SheetTypes          = "Tipos"
	SheetCauses         = "Causas"
	SheetImportance     = "Importancia"
)

// WorkbookSheets lists the sheets in workbook order
var WorkbookSheets = []string{
	SheetYearly, SheetMonthly, SheetRoads, SheetMunicipalities, SheetTypes, SheetCauses, SheetImportance,
}

// WorkbookWriter exports the exploratory aggregates to an xlsx workbook.
type WorkbookWriter struct {
	files  *files.Manager
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{files: files.NewManager("", logger), logger: logger}
}

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

func rankedSheet(name, key, value string, ranked []statistics.Ranked) sheet {
	s := sheet{name: name, header: []interface{}{key, value}}
	for _, r := range ranked {
		s.rows = append(s.rows, []interface{}{r.Key, r.Value})
	}
	return s
}

func buildSheets(e *statistics.Exploratory, importances []modeling.FeatureImportance) []sheet {
	if e == nil {
		e = &statistics.Exploratory{}
	}
	yearly := sheet{name: SheetYearly, header: []interface{}{"ano", "acidentes", "mortos", "feridos_graves", "gravidade"}}
	for _, y := range e.Yearly {
		yearly.rows = append(yearly.rows, []interface{}{y.Year, y.Accidents, y.Fatalities, y.SevereInjuries, y.Severity})
	}
	monthly := sheet{name: SheetMonthly, header: []interface{}{"ano", "mes", "gravidade"}}
	for _, m := range e.Monthly {
		monthly.rows = append(monthly.rows, []interface{}{m.Year, m.Month, m.Severity})
	}
	imp := sheet{name: SheetImportance, header: []interface{}{"feature", "importancia"}}
	for _, fi := range importances {
		imp.rows = append(imp.rows, []interface{}{fi.Feature, fi.Importance})
	}

	return []sheet{
		yearly,
		monthly,
		rankedSheet(SheetRoads, "rodovia", "gravidade", e.TopRoads),
		rankedSheet(SheetMunicipalities, "municipio", "gravidade", e.TopMunicipalities),
		rankedSheet(SheetTypes, "tipo_acidente", "acidentes", e.TopTypes),
		rankedSheet(SheetCauses, "causa_acidente", "acidentes", e.TopCauses),
		imp,
	}
}

// Write creates the workbook at path. importances may be empty when
// modeling did not run; the sheet then holds only its header.
func (w *WorkbookWriter) Write(path string, e *statistics.Exploratory, importances []modeling.FeatureImportance) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range buildSheets(e, importances) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := w.files.WriteAtomic(path, func(out io.Writer) error {
		_, err := f.WriteTo(out)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	w.logger.Info("workbook written", slog.String("path", path), slog.Int("sheets", len(WorkbookSheets)))
	return nil
}

func writeSheet(f *excelize.File, s sheet) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", s.name, err)
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, s.name, err)
		}
	}
	return nil
}

package domain

import (
	"time"
)

// Source column names as they appear in the yearly PRF extracts.
const (
	ColumnFatalities     = "mortos"
	ColumnSevereInjuries = "feridos_graves"
	ColumnLatitude       = "latitude"
	ColumnLongitude      = "longitude"
	ColumnRoadNumber     = "br"
	ColumnKilometre      = "km"
	ColumnDate           = "data_inversa"
	ColumnMunicipality   = "municipio"
	ColumnState          = "uf"
	ColumnAccidentType   = "tipo_acidente"
	ColumnCause          = "causa_acidente"
	ColumnWeather        = "condicao_metereologica"
)

// Derived column names written to the cleaned table.
const (
	ColumnYear      = "ano"
	ColumnSeverity  = "gravidade"
	ColumnMonth     = "mes"
	ColumnWeekday   = "dia_semana"
	ColumnIsWeekend = "fim_de_semana"
)

// ExpectedColumns lists the source columns the cleaning stage reads.
// A yearly file lacking one of them produces a schema warning.
var ExpectedColumns = []string{
	ColumnFatalities,
	ColumnSevereInjuries,
	ColumnLatitude,
	ColumnLongitude,
	ColumnRoadNumber,
	ColumnKilometre,
	ColumnDate,
}

// DerivedColumns lists the columns appended to the cleaned table, in order.
var DerivedColumns = []string{
	ColumnYear,
	ColumnSeverity,
	ColumnMonth,
	ColumnWeekday,
	ColumnIsWeekend,
}

// HighSeverityThreshold is the severity at which an accident is labelled high severity.
const HighSeverityThreshold = 2

// NullFloat is a float64 that may be missing.
type NullFloat struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Float returns a valid NullFloat.
func Float(v float64) NullFloat {
	return NullFloat{Value: v, Valid: true}
}

// NullInt is an int that may be missing.
type NullInt struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// Int returns a valid NullInt.
func Int(v int) NullInt {
	return NullInt{Value: v, Valid: true}
}

// NullBool is a bool that may be missing.
type NullBool struct {
	Value bool `json:"value"`
	Valid bool `json:"valid"`
}

// Bool returns a valid NullBool.
func Bool(v bool) NullBool {
	return NullBool{Value: v, Valid: true}
}

// RawRecord is one row as read from a yearly extract, before any coercion.
type RawRecord struct {
	Year   int               `json:"year"`
	Source string            `json:"source"`
	Line   int               `json:"line"`
	Fields map[string]string `json:"fields"`
}

// Accident is a cleaned accident record.
//
// Severity is derived from Fatalities and SevereInjuries exactly once by the
// cleaning stage and is never read from input.
type Accident struct {
	Year           int        `json:"year"`
	Source         string     `json:"source,omitempty"`
	Fatalities     int        `json:"fatalities"`
	SevereInjuries int        `json:"severe_injuries"`
	Severity       int        `json:"severity"`
	Latitude       NullFloat  `json:"latitude"`
	Longitude      NullFloat  `json:"longitude"`
	RoadNumber     NullFloat  `json:"road_number"`
	Kilometre      NullFloat  `json:"kilometre"`
	Date           *time.Time `json:"date,omitempty"`
	Month          NullInt    `json:"month"`
	Weekday        NullInt    `json:"weekday"`
	IsWeekend      NullBool   `json:"is_weekend"`

	// Fields holds the pass-through columns with null markers mapped to "".
	Fields map[string]string `json:"fields,omitempty"`
}

// HasCoordinates reports whether both coordinates parsed.
func (a Accident) HasCoordinates() bool {
	return a.Latitude.Valid && a.Longitude.Valid
}

// HighSeverity reports whether the accident reaches the high-severity label.
func (a Accident) HighSeverity() bool {
	return a.Severity >= HighSeverityThreshold
}

// WeekdayName returns the English weekday name, or "" when the date is unknown.
func (a Accident) WeekdayName() string {
	if !a.Weekday.Valid {
		return ""
	}
	return time.Weekday(a.Weekday.Value).String()
}

// Field returns a pass-through column value.
func (a Accident) Field(column string) string {
	if a.Fields == nil {
		return ""
	}
	return a.Fields[column]
}

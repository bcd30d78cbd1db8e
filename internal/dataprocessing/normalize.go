package dataprocessing

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"

	apperrors "prfcli/internal/errors"
	"prfcli/pkg/contracts/domain"
)

// ParseOutcome classifies how a raw cell was interpreted
type ParseOutcome int

const (
	OutcomeValid ParseOutcome = iota
	OutcomeMissing
	OutcomeUnparsable
)

// IsNull reports whether raw is empty or the null token.
func IsNull(raw, nullToken string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || (nullToken != "" && s == nullToken)
}

// ParseLocaleFloat parses a number written with a comma decimal separator.
// Null cells are missing; anything that does not parse to a finite number is
// missing and reported as unparsable. It never fails.
func ParseLocaleFloat(raw, nullToken string) (domain.NullFloat, ParseOutcome) {
	if IsNull(raw, nullToken) {
		return domain.NullFloat{}, OutcomeMissing
	}
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return domain.NullFloat{}, OutcomeUnparsable
	}
	return domain.Float(v), OutcomeValid
}

// CoerceCount converts a raw count cell to a non-negative integer.
// Missing cells become 0; unparsable, negative or out-of-range values become 0
// and are reported as unparsable; fractions truncate toward zero.
func CoerceCount(raw, nullToken string) (int, ParseOutcome) {
	f, outcome := ParseLocaleFloat(raw, nullToken)
	if outcome != OutcomeValid {
		return 0, outcome
	}
	if f.Value < 0 {
		return 0, OutcomeUnparsable
	}
	n, err := safecast.Convert[int](math.Trunc(f.Value))
	if err != nil {
		return 0, OutcomeUnparsable
	}
	return n, OutcomeValid
}

// ColumnReport counts the outcomes of one typed column
type ColumnReport struct {
	Valid      int `json:"valid"`
	Missing    int `json:"missing"`
	Unparsable int `json:"unparsable"`
	ZeroFilled int `json:"zero_filled"`
}

// NormalizeReport summarizes type coercion over a whole table
type NormalizeReport struct {
	Rows        int                      `json:"rows"`
	Columns     map[string]*ColumnReport `json:"columns"`
	DateInvalid int                      `json:"date_invalid"`
}

func newNormalizeReport() *NormalizeReport {
	r := &NormalizeReport{Columns: make(map[string]*ColumnReport)}
	for _, c := range append(append([]string{}, countColumns...), floatColumns...) {
		r.Columns[c] = &ColumnReport{}
	}
	return r
}

func (r *NormalizeReport) record(column string, outcome ParseOutcome, zeroFilled bool) {
	cr := r.Columns[column]
	switch outcome {
	case OutcomeValid:
		cr.Valid++
	case OutcomeMissing:
		cr.Missing++
	case OutcomeUnparsable:
		cr.Unparsable++
	}
	if zeroFilled {
		cr.ZeroFilled++
	}
}

// SortedColumns returns the reported column names in a stable order.
func (r *NormalizeReport) SortedColumns() []string {
	cols := make([]string, 0, len(r.Columns))
	for c := range r.Columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// ApplyTo adds the unparsable counts to the run warnings.
func (r *NormalizeReport) ApplyTo(w *apperrors.Warnings) {
	for _, c := range r.SortedColumns() {
		w.AddParseFailures(c, r.Columns[c].Unparsable)
	}
	w.AddParseFailures(domain.ColumnDate, r.DateInvalid)
}

package dataprocessing

import (
	"log/slog"
	"strings"
	"time"

	"prfcli/pkg/contracts/domain"
)

// ParseDate tries each layout in order; a null or unparsable cell yields nil.
func ParseDate(raw, nullToken string, layouts []string) (*time.Time, ParseOutcome) {
	if IsNull(raw, nullToken) {
		return nil, OutcomeMissing
	}
	s := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, OutcomeValid
		}
	}
	return nil, OutcomeUnparsable
}

// Calendar derives month, weekday index (0=Sunday) and weekend flag from date.
// A nil date leaves all three missing.
func Calendar(date *time.Time) (domain.NullInt, domain.NullInt, domain.NullBool) {
	if date == nil {
		return domain.NullInt{}, domain.NullInt{}, domain.NullBool{}
	}
	wd := date.Weekday()
	return domain.Int(int(date.Month())),
		domain.Int(int(wd)),
		domain.Bool(wd == time.Saturday || wd == time.Sunday)
}

// Clean normalizes every raw record and derives severity and calendar fields.
// The raw table is not modified.
func Clean(raw *domain.RawTable, opts CleanOptions) (*domain.CleanedTable, *NormalizeReport) {
	if len(opts.DateLayouts) == 0 {
		opts.DateLayouts = DefaultCleanOptions().DateLayouts
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	report := newNormalizeReport()
	table := &domain.CleanedTable{
		Columns: append([]string(nil), raw.Columns...),
		Records: make([]domain.Accident, 0, len(raw.Records)),
	}

	for _, rec := range raw.Records {
		table.Records = append(table.Records, cleanRecord(rec, opts, report))
	}
	report.Rows = len(table.Records)

	logger.Info("cleaned accident table",
		slog.Int("rows", report.Rows),
		slog.Int("invalid_dates", report.DateInvalid))
	return table, report
}

func cleanRecord(rec domain.RawRecord, opts CleanOptions, report *NormalizeReport) domain.Accident {
	null := opts.NullToken
	a := domain.Accident{
		Year:   rec.Year,
		Source: rec.Source,
		Fields: make(map[string]string, len(rec.Fields)),
	}
	for k, v := range rec.Fields {
		if IsNull(v, null) {
			v = ""
		}
		a.Fields[k] = v
	}
	if opts.WeatherFallback != "" {
		if _, ok := rec.Fields[domain.ColumnWeather]; ok && a.Fields[domain.ColumnWeather] == "" {
			a.Fields[domain.ColumnWeather] = opts.WeatherFallback
		}
	}

	var outcome ParseOutcome
	a.Fatalities, outcome = CoerceCount(rec.Fields[domain.ColumnFatalities], null)
	report.record(domain.ColumnFatalities, outcome, outcome != OutcomeValid)
	a.SevereInjuries, outcome = CoerceCount(rec.Fields[domain.ColumnSevereInjuries], null)
	report.record(domain.ColumnSevereInjuries, outcome, outcome != OutcomeValid)
	a.Severity = a.Fatalities + a.SevereInjuries

	a.Latitude, outcome = ParseLocaleFloat(rec.Fields[domain.ColumnLatitude], null)
	report.record(domain.ColumnLatitude, outcome, false)
	a.Longitude, outcome = ParseLocaleFloat(rec.Fields[domain.ColumnLongitude], null)
	report.record(domain.ColumnLongitude, outcome, false)
	a.Kilometre, outcome = ParseLocaleFloat(rec.Fields[domain.ColumnKilometre], null)
	report.record(domain.ColumnKilometre, outcome, false)
	a.RoadNumber, outcome = ParseLocaleFloat(rec.Fields[domain.ColumnRoadNumber], null)
	report.record(domain.ColumnRoadNumber, outcome, false)

	a.Date, outcome = ParseDate(rec.Fields[domain.ColumnDate], null, opts.DateLayouts)
	if outcome == OutcomeUnparsable {
		report.DateInvalid++
	}
	a.Month, a.Weekday, a.IsWeekend = Calendar(a.Date)

	return a
}

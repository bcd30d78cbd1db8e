package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prfcli/pkg/contracts/domain"
)

func TestParseDate(t *testing.T) {
	layouts := DefaultCleanOptions().DateLayouts
	tests := []struct {
		raw     string
		want    string
		outcome ParseOutcome
	}{
		{"2021-01-02", "2021-01-02", OutcomeValid},
		{"02/01/2021", "2021-01-02", OutcomeValid},
		{"02/01/21", "2021-01-02", OutcomeValid},
		{"(null)", "", OutcomeMissing},
		{"2021-13-45", "", OutcomeUnparsable},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, outcome := ParseDate(tt.raw, "(null)", layouts)
			assert.Equal(t, tt.outcome, outcome)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestCalendar(t *testing.T) {
	tests := []struct {
		date    string
		month   int
		weekday time.Weekday
		weekend bool
	}{
		{"2021-01-02", 1, time.Saturday, true},
		{"2021-01-03", 1, time.Sunday, true},
		{"2021-01-04", 1, time.Monday, false},
		{"2021-12-31", 12, time.Friday, false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, _ := time.Parse("2006-01-02", tt.date)
			month, weekday, weekend := Calendar(&d)
			assert.Equal(t, domain.Int(tt.month), month)
			assert.Equal(t, domain.Int(int(tt.weekday)), weekday)
			assert.Equal(t, domain.Bool(tt.weekend), weekend)
		})
	}

	month, weekday, weekend := Calendar(nil)
	assert.False(t, month.Valid)
	assert.False(t, weekday.Valid)
	assert.False(t, weekend.Valid)
}

func TestClean_SeverityInvariant(t *testing.T) {
	raw := &domain.RawTable{}
	inputs := [][2]string{{"0", "0"}, {"1", "0"}, {"0", "2"}, {"3", "4"}, {"(null)", "1"}, {"x", "y"}}
	for _, in := range inputs {
		raw.Records = append(raw.Records, domain.RawRecord{
			Year:   2020,
			Fields: map[string]string{"mortos": in[0], "feridos_graves": in[1], "data_inversa": "2020-06-06"},
		})
	}

	table, _ := Clean(raw, DefaultCleanOptions())
	for _, a := range table.Records {
		assert.Equal(t, a.Fatalities+a.SevereInjuries, a.Severity)
		assert.GreaterOrEqual(t, a.Severity, 0)
		assert.Equal(t, "Saturday", a.WeekdayName())
		assert.True(t, a.IsWeekend.Value)
	}
	assert.Equal(t, 7, table.Records[3].Severity)
	assert.True(t, table.Records[3].HighSeverity())
	assert.False(t, table.Records[1].HighSeverity())
}

func TestClean_InvalidDateLeavesCalendarMissing(t *testing.T) {
	raw := &domain.RawTable{Records: []domain.RawRecord{
		{Year: 2020, Fields: map[string]string{"data_inversa": "ontem"}},
	}}
	table, report := Clean(raw, DefaultCleanOptions())
	a := table.Records[0]
	assert.Nil(t, a.Date)
	assert.False(t, a.Month.Valid)
	assert.False(t, a.IsWeekend.Valid)
	assert.Equal(t, "", a.WeekdayName())
	assert.Equal(t, 1, report.DateInvalid)
}

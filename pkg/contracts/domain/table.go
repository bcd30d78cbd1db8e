package domain

import (
	"sort"
)

// FileStats describes how one yearly extract was ingested.
type FileStats struct {
	Name           string   `json:"name"`
	Year           int      `json:"year"`
	Rows           int      `json:"rows"`
	Skipped        int      `json:"skipped"`
	SkippedLines   []int    `json:"skipped_lines,omitempty"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// RawTable is the union of all yearly extracts.
type RawTable struct {
	Columns []string    `json:"columns"`
	Records []RawRecord `json:"-"`
	Files   []FileStats `json:"files"`
}

// SkippedRows returns the number of malformed rows across all files.
func (t *RawTable) SkippedRows() int {
	total := 0
	for _, f := range t.Files {
		total += f.Skipped
	}
	return total
}

// CleanedTable is the single source of truth for every downstream projection.
type CleanedTable struct {
	Columns []string   `json:"columns"`
	Records []Accident `json:"-"`
}

// Len returns the number of records.
func (t *CleanedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Years returns the distinct years present, ascending.
func (t *CleanedTable) Years() []int {
	seen := make(map[int]bool)
	for _, r := range t.Records {
		seen[r.Year] = true
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// FilterYear returns a read-only view holding only the given year.
func (t *CleanedTable) FilterYear(year int) *CleanedTable {
	out := &CleanedTable{Columns: t.Columns}
	for _, r := range t.Records {
		if r.Year == year {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

package logbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one raw activity record from the CSV source. Fields are kept
// as strings; validation and normalization happen during planning so
// that every bad row can be reported at once.
type Row struct {
	Date     string
	Activity string
	ClockIn  string // optional, falls back to the configured default
	ClockOut string // optional
}

// ReadSource parses the activity CSV. Two layouts are accepted: the
// current header-based layout (date, activity, clockin, clockout —
// case-insensitive, clock columns optional) and the legacy two-row
// layout (first row dates, second row activities). A record whose date
// and activity are both empty is skipped.
func ReadSource(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: need at least two rows", ErrMalformedSource)
	}

	var rows []Row
	if cols, ok := headerColumns(records[0]); ok {
		rows = headerRows(records[1:], cols)
	} else {
		rows = legacyRows(records[0], records[1])
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no usable rows", ErrMalformedSource)
	}
	return rows, nil
}

type columns struct {
	date, activity, clockIn, clockOut int
}

// headerColumns recognizes the header-based layout. The clock columns
// are optional; date and activity are required.
func headerColumns(header []string) (columns, bool) {
	cols := columns{date: -1, activity: -1, clockIn: -1, clockOut: -1}
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\uFEFF"))) {
		case "date":
			cols.date = i
		case "activity":
			cols.activity = i
		case "clockin":
			cols.clockIn = i
		case "clockout":
			cols.clockOut = i
		}
	}
	return cols, cols.date >= 0 && cols.activity >= 0
}

func headerRows(records [][]string, cols columns) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{
			Date:     cell(rec, cols.date),
			Activity: cell(rec, cols.activity),
			ClockIn:  cell(rec, cols.clockIn),
			ClockOut: cell(rec, cols.clockOut),
		}
		if row.Date == "" && row.Activity == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// legacyRows zips the two-row layout: parallel date and activity columns.
func legacyRows(dates, activities []string) []Row {
	n := len(dates)
	if len(activities) < n {
		n = len(activities)
	}
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		row := Row{
			Date:     strings.TrimSpace(dates[i]),
			Activity: strings.TrimSpace(activities[i]),
		}
		if row.Date == "" && row.Activity == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

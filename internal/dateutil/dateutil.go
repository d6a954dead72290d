package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnsupportedDateFormat indicates none of the known date layouts matched.
	ErrUnsupportedDateFormat = errors.New("unsupported date format")

	// ErrUnsupportedTimeFormat indicates a clock value was neither 24h nor 12h.
	ErrUnsupportedTimeFormat = errors.New("unsupported time format")
)

// dateLayouts are tried in order. The CSV exports seen in the wild use
// the first two; the rest cover spreadsheet locale variations.
var dateLayouts = []string{
	"02-Jan-06",
	"02/01/2006",
	"02-01-2006",
	"02-01-06",
	"2006-01-02",
	"2 January 2006",
	"Jan 2, 2006",
	"02.01.2006",
	"January 2, 2006",
}

// ParseDate parses a date string in any of the supported layouts.
// A leading UTF-8 BOM and surrounding whitespace are stripped first.
func ParseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "\uFEFF"))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedDateFormat, s)
}

// ToTwelveHour normalizes a clock value to lowercase "hh:mm am|pm".
// Accepts 24-hour "HH:MM" or 12-hour "hh:mm am" in either case.
func ToTwelveHour(s string) (string, error) {
	cleaned := strings.TrimSpace(s)
	if t, err := time.Parse("15:04", cleaned); err == nil {
		return strings.ToLower(t.Format("03:04 PM")), nil
	}
	if t, err := time.Parse("03:04 PM", strings.ToUpper(cleaned)); err == nil {
		return strings.ToLower(t.Format("03:04 PM")), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedTimeFormat, s)
}

// AllDaysIn returns every calendar day of the given month in ascending
// order, from day 1 through the last day inclusive.
func AllDaysIn(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	days := make([]time.Time, 0, 31)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// MonthKey returns the uppercase full English month name used as the
// lookup key into a session's month-header map.
func MonthKey(t time.Time) string {
	return strings.ToUpper(t.Month().String())
}

// ISODate formats a date as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

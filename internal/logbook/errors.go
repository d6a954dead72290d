package logbook

import "errors"

var (
	// ErrMalformedSource indicates the CSV is empty, truncated, or
	// missing required columns. Nothing is submitted.
	ErrMalformedSource = errors.New("malformed activity source")

	// ErrInsufficientActiveDays indicates fewer active (non-OFF) days
	// than the configured minimum. Nothing is submitted.
	ErrInsufficientActiveDays = errors.New("insufficient active days")

	// ErrMissingMonthHeader indicates the session has no header ID for
	// a month referenced by the source.
	ErrMissingMonthHeader = errors.New("no header ID for month")
)

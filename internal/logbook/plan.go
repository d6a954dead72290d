package logbook

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danielhalim/logbook/internal/dateutil"
	"github.com/danielhalim/logbook/internal/portal"
	"github.com/danielhalim/logbook/internal/session"
)

// offValue is the literal the portal stores for non-working days, used
// for the activity, description and both clock fields.
const offValue = "OFF"

// Defaults supplies clock values for rows that carry none of their own.
type Defaults struct {
	ClockIn  string
	ClockOut string
}

// MonthPlan holds everything to submit for one calendar month: the
// user's active entries plus a synthesized OFF entry for every other
// day of the month.
type MonthPlan struct {
	Year     int
	Month    time.Month
	HeaderID string
	Active   []portal.Entry
	Off      []portal.Entry
}

// Plan is the complete, validated submission set for one run. Within
// every touched month each calendar day appears exactly once.
type Plan struct {
	Months     []MonthPlan
	ActiveDays int
}

// TotalEntries counts every submission the plan will make.
func (p *Plan) TotalEntries() int {
	n := 0
	for _, m := range p.Months {
		n += len(m.Active) + len(m.Off)
	}
	return n
}

// IsOff classifies a day. Weekends are always OFF, regardless of the
// activity text; on weekdays only the literal "off" marks a day OFF.
// (The portal does not accept weekend entries, so a weekend row with
// real activity text is still forced OFF rather than submitted.)
func IsOff(date time.Time, activity string) bool {
	wd := date.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(activity), offValue)
}

type monthKey struct {
	year  int
	month time.Month
}

// BuildPlan validates every row and produces the full submission set.
// All row problems are collected and reported together; any problem
// aborts planning so that no partial set is ever submitted. The
// threshold check runs after classification: fewer than minActiveDays
// active days aborts with ErrInsufficientActiveDays.
func BuildPlan(rows []Row, sess *session.Session, defaults Defaults, minActiveDays int) (*Plan, error) {
	defClockIn, err := dateutil.ToTwelveHour(defaults.ClockIn)
	if err != nil {
		return nil, fmt.Errorf("default clock-in: %w", err)
	}
	defClockOut, err := dateutil.ToTwelveHour(defaults.ClockOut)
	if err != nil {
		return nil, fmt.Errorf("default clock-out: %w", err)
	}

	months := map[monthKey]*MonthPlan{}
	handled := map[string]bool{} // iso dates covered by an active entry
	var rowErrs []error
	activeDays := 0

	for i, row := range rows {
		rowNum := i + 1
		if row.Date == "" {
			rowErrs = append(rowErrs, fmt.Errorf("%w: row %d has activity but no date", ErrMalformedSource, rowNum))
			continue
		}
		if row.Activity == "" {
			rowErrs = append(rowErrs, fmt.Errorf("%w: row %d has date but no activity", ErrMalformedSource, rowNum))
			continue
		}

		date, err := dateutil.ParseDate(row.Date)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", rowNum, err))
			continue
		}

		headerID, ok := sess.HeaderFor(date)
		if !ok {
			rowErrs = append(rowErrs, fmt.Errorf("%w %s (row %d)", ErrMissingMonthHeader, dateutil.MonthKey(date), rowNum))
			continue
		}

		key := monthKey{date.Year(), date.Month()}
		mp := months[key]
		if mp == nil {
			mp = &MonthPlan{Year: key.year, Month: key.month, HeaderID: headerID}
			months[key] = mp
		}

		if IsOff(date, row.Activity) {
			// Explicit OFF rows touch the month; the entry itself is
			// synthesized in the fill pass with every other OFF day.
			continue
		}

		iso := dateutil.ISODate(date)
		if handled[iso] {
			rowErrs = append(rowErrs, fmt.Errorf("%w: duplicate date %s (row %d)", ErrMalformedSource, iso, rowNum))
			continue
		}
		handled[iso] = true
		activeDays++

		clockIn, clockOut := defClockIn, defClockOut
		if row.ClockIn != "" {
			if clockIn, err = dateutil.ToTwelveHour(row.ClockIn); err != nil {
				rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", rowNum, err))
				continue
			}
		}
		if row.ClockOut != "" {
			if clockOut, err = dateutil.ToTwelveHour(row.ClockOut); err != nil {
				rowErrs = append(rowErrs, fmt.Errorf("row %d: %w", rowNum, err))
				continue
			}
		}

		mp.Active = append(mp.Active, portal.Entry{
			Date:     iso,
			HeaderID: headerID,
			ClockIn:  clockIn,
			ClockOut: clockOut,
			Activity: row.Activity,
			Descr:    row.Activity,
			RemoteID: portal.NilID,
		})
	}

	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}
	if activeDays < minActiveDays {
		return nil, fmt.Errorf("%w: %d active days, minimum is %d", ErrInsufficientActiveDays, activeDays, minActiveDays)
	}

	// Fill every uncovered day of each touched month with an OFF entry.
	for _, mp := range months {
		sort.Slice(mp.Active, func(i, j int) bool { return mp.Active[i].Date < mp.Active[j].Date })
		for _, day := range dateutil.AllDaysIn(mp.Year, mp.Month) {
			iso := dateutil.ISODate(day)
			if handled[iso] {
				continue
			}
			mp.Off = append(mp.Off, portal.Entry{
				Date:     iso,
				HeaderID: mp.HeaderID,
				ClockIn:  offValue,
				ClockOut: offValue,
				Activity: offValue,
				Descr:    offValue,
				RemoteID: portal.NilID,
				Off:      true,
			})
		}
	}

	plan := &Plan{ActiveDays: activeDays}
	for _, mp := range months {
		plan.Months = append(plan.Months, *mp)
	}
	sort.Slice(plan.Months, func(i, j int) bool {
		if plan.Months[i].Year != plan.Months[j].Year {
			return plan.Months[i].Year < plan.Months[j].Year
		}
		return plan.Months[i].Month < plan.Months[j].Month
	})
	return plan, nil
}

// Package report reshapes flat task listings into the two report views:
// the plan-vs-fact ledger and the depth-bounded project resource tree.
// The aggregation functions are pure; Service wires them to the fetch
// layer.
package report

import "time"

// dateOnly is the ISO 8601 date-only layout used throughout.
const dateOnly = "2006-01-02"

// Period names a report date window.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

// DateRange is a concrete [From, To] calendar-date pair. Both bounds
// are midnight in the host's local calendar; no timezone normalization
// is attempted beyond that.
type DateRange struct {
	From time.Time
	To   time.Time
}

// FromISO and ToISO render the bounds in date-only form for filters.
func (r DateRange) FromISO() string { return r.From.Format(dateOnly) }
func (r DateRange) ToISO() string   { return r.To.Format(dateOnly) }

// Resolve maps a named period (or explicit bounds, for PeriodCustom) to
// a concrete date range relative to the current day.
func Resolve(period Period, customFrom, customTo string) DateRange {
	return ResolveAt(period, customFrom, customTo, time.Now())
}

// ResolveAt is Resolve pinned to a reference time, for callers that
// need determinism.
func ResolveAt(period Period, customFrom, customTo string, now time.Time) DateRange {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodWeek:
		return DateRange{From: today.AddDate(0, 0, -7), To: today}

	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return DateRange{From: first, To: first.AddDate(0, 1, -1)}

	case PeriodQuarter:
		quarter := (int(now.Month()) - 1) / 3
		first := time.Date(now.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, now.Location())
		return DateRange{From: first, To: first.AddDate(0, 3, -1)}

	case PeriodYear:
		return DateRange{
			From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()),
			To:   time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location()),
		}

	case PeriodCustom:
		return DateRange{
			From: parseBound(customFrom, today, now.Location()),
			To:   parseBound(customTo, today, now.Location()),
		}

	default:
		// Unrecognized period: trailing 30-day window.
		return DateRange{From: today.AddDate(0, 0, -30), To: today}
	}
}

// parseBound parses an ISO date, defaulting to fallback when the bound
// is missing or malformed.
func parseBound(s string, fallback time.Time, loc *time.Location) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.ParseInLocation(dateOnly, s, loc)
	if err != nil {
		return fallback
	}
	return t
}

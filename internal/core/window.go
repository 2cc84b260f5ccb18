package core

import (
	"fmt"
	"time"
)

// Window is a half-open time interval [Start, End) bounding aggregation
// queries. The end instant is excluded.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthWindow builds the window covering one calendar month in loc: from the
// first day of the month at 00:00 local through the first day of the next
// month. Calendar arithmetic handles variable month lengths and the
// December→January year rollover; month length is never approximated.
// An out-of-range month is a caller error, reported as ErrInvalidMonth.
func MonthWindow(year, month int, loc *time.Location) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	if year < 1 {
		return Window{}, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// CurrentMonthWindow returns the window for the calendar month containing
// now, in now's location.
func CurrentMonthWindow(now time.Time) Window {
	w, _ := MonthWindow(now.Year(), int(now.Month()), now.Location())
	return w
}

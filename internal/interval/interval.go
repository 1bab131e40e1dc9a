// Package interval provides the time arithmetic shared by recurrence
// expansion, filtering and grid bucketing. All operations work in local
// wall-clock time.
package interval

import "time"

// Interval is a pair of instants. Overlap tests treat both bounds as
// inclusive, matching the behavior the grid and filter layers rely on.
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns an interval with the bounds in order.
func New(start, end time.Time) Interval {
	if end.Before(start) {
		start, end = end, start
	}
	return Interval{Start: start, End: end}
}

// Duration returns the interval length.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Shift moves both bounds by d, preserving duration.
func (iv Interval) Shift(d time.Duration) Interval {
	return Interval{Start: iv.Start.Add(d), End: iv.End.Add(d)}
}

// Overlaps reports whether the two intervals intersect, bounds inclusive.
func Overlaps(a, b Interval) bool {
	if a.End.Before(b.Start) {
		return false
	}
	if b.End.Before(a.Start) {
		return false
	}
	return true
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight of its calendar day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Sunday beginning the week containing t.
func StartOfWeek(t time.Time) time.Time {
	start := StartOfDay(t)
	return start.AddDate(0, 0, -int(start.Weekday()))
}

// StartOfMonth returns midnight of the first day of the month containing t.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// CombineDayTime stamps the calendar day of day with the time-of-day of
// clock.
func CombineDayTime(day, clock time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), day.Location())
}

// DayRange returns the inclusive interval covering the calendar day of t.
func DayRange(t time.Time) Interval {
	start := StartOfDay(t)
	return Interval{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

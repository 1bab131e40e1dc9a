// Package grid maps abstract time buckets (a day, or a day/hour cell) to
// the events overlapping them. The day, week and month views all consume
// the same adapter; only the drawing differs.
package grid

import (
	"time"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/interval"
)

const (
	// DefaultFirstHour and DefaultLastHour bound the visible day/week grid.
	DefaultFirstHour = 8
	DefaultLastHour  = 20

	// MinVisibleHeightPercent keeps very short events clickable.
	MinVisibleHeightPercent = 10.0
)

// Adapter buckets events for the grid views.
type Adapter struct {
	FirstHour int
	LastHour  int
}

// NewAdapter returns an adapter covering the default visible hours.
func NewAdapter() Adapter {
	return Adapter{FirstHour: DefaultFirstHour, LastHour: DefaultLastHour}
}

// Hours enumerates the hour rows of the day and week grids.
func (a Adapter) Hours() []int {
	if a.LastHour < a.FirstHour {
		return nil
	}
	hours := make([]int, 0, a.LastHour-a.FirstHour+1)
	for h := a.FirstHour; h <= a.LastHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// hourBucket returns the [d h:00, d h+1:00) bounds of an hour cell.
func hourBucket(day time.Time, hour int) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	return start, start.Add(time.Hour)
}

// EventsInHour returns the non-all-day events belonging to the given hour
// cell. An event belongs to hour h of day d iff its interval overlaps the
// hour bucket with exclusive bounds — an event ending exactly on the hour
// never spills into the next cell — and its start date equals d: a
// multi-hour event is attributed only to the day and hour it starts in,
// never split across cells.
func (a Adapter) EventsInHour(events []calendar.Event, day time.Time, hour int) []calendar.Event {
	bucketStart, bucketEnd := hourBucket(day, hour)
	out := make([]calendar.Event, 0)
	for _, event := range events {
		if event.AllDay {
			continue
		}
		if !interval.SameDay(event.Start, day) {
			continue
		}
		if event.Start.Before(bucketEnd) && bucketStart.Before(event.End) {
			out = append(out, event)
		}
	}
	return out
}

// EventsForDay returns the events starting on the given day, all-day ones
// included.
func (a Adapter) EventsForDay(events []calendar.Event, day time.Time) []calendar.Event {
	out := make([]calendar.Event, 0)
	for _, event := range events {
		if interval.SameDay(event.Start, day) {
			out = append(out, event)
		}
	}
	return out
}

// AllDayEvents returns the all-day events bucketed to the given day. The
// views render these in a separate lane above the hour grid.
func (a Adapter) AllDayEvents(events []calendar.Event, day time.Time) []calendar.Event {
	out := make([]calendar.Event, 0)
	for _, event := range events {
		if event.AllDay && interval.SameDay(event.Start, day) {
			out = append(out, event)
		}
	}
	return out
}

// ResolveDrop computes the rescheduled interval for an event dropped onto a
// day/hour cell: the new start keeps the original minute-of-hour offset and
// substitutes the target day and hour; the end follows at the original
// duration, so duration is invariant under drags.
func (a Adapter) ResolveDrop(event calendar.Event, targetDay time.Time, targetHour int) (time.Time, time.Time) {
	newStart := time.Date(targetDay.Year(), targetDay.Month(), targetDay.Day(),
		targetHour, event.Start.Minute(), 0, 0, targetDay.Location())
	return newStart, newStart.Add(event.Duration())
}

// ResolveDayDrop computes the rescheduled interval for an event dropped onto
// a whole-day cell (month view): the time-of-day is preserved, only the
// calendar day changes.
func (a Adapter) ResolveDayDrop(event calendar.Event, targetDay time.Time) (time.Time, time.Time) {
	newStart := interval.CombineDayTime(targetDay, event.Start)
	return newStart, newStart.Add(event.Duration())
}

// Placement positions an event inside its bucket as percentages of the
// bucket height. The adapter owns this arithmetic because it is the
// authority on bucket geometry; the drawing itself is external.
type Placement struct {
	OffsetPercent float64
	HeightPercent float64
}

// PlacementFor computes the vertical offset and height of an event within a
// bucket starting at bucketStart and spanning bucketLength.
func PlacementFor(event calendar.Event, bucketStart time.Time, bucketLength time.Duration) Placement {
	if bucketLength <= 0 {
		return Placement{HeightPercent: MinVisibleHeightPercent}
	}

	offsetMinutes := event.Start.Sub(bucketStart).Minutes()
	if offsetMinutes < 0 {
		offsetMinutes = 0
	}
	bucketMinutes := bucketLength.Minutes()

	offset := offsetMinutes / bucketMinutes * 100
	height := event.Duration().Minutes() / bucketMinutes * 100
	if height < MinVisibleHeightPercent {
		height = MinVisibleHeightPercent
	}

	return Placement{OffsetPercent: offset, HeightPercent: height}
}

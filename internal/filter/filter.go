// Package filter narrows the event collection to the subset a view should
// render. Criteria are conjunctive and all optional; the engine recomputes
// the filtered sequence on every call and holds no cache, which is fine at
// this data scale.
package filter

import (
	"strings"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/interval"
)

// Criteria describes the optional predicates applied with AND semantics.
type Criteria struct {
	// Query matches case-insensitively against title, description or
	// location; any one field containing it is a match.
	Query string
	// Category requires exact equality against the event's category tag.
	Category string
	// Range passes events whose interval overlaps it, bounds inclusive.
	Range *interval.Interval
}

// Empty reports whether the criteria impose no filtering at all.
func (c Criteria) Empty() bool {
	return c.Query == "" && c.Category == "" && c.Range == nil
}

// Apply returns the events satisfying every set predicate. It is pure: the
// input slice is never mutated.
func Apply(events []calendar.Event, c Criteria) []calendar.Event {
	if c.Empty() {
		out := make([]calendar.Event, len(events))
		copy(out, events)
		return out
	}

	out := make([]calendar.Event, 0, len(events))
	for _, event := range events {
		if Matches(event, c) {
			out = append(out, event)
		}
	}
	return out
}

// Matches reports whether a single event satisfies the criteria.
func Matches(event calendar.Event, c Criteria) bool {
	if c.Query != "" && !matchesQuery(event, c.Query) {
		return false
	}
	if c.Category != "" && event.Category != c.Category {
		return false
	}
	if c.Range != nil {
		if !interval.Overlaps(interval.Interval{Start: event.Start, End: event.End}, *c.Range) {
			return false
		}
	}
	return true
}

func matchesQuery(event calendar.Event, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(event.Title), q) ||
		strings.Contains(strings.ToLower(event.Description), q) ||
		strings.Contains(strings.ToLower(event.Location), q)
}

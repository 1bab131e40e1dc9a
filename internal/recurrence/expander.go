// Package recurrence expands a template event carrying a recurrence rule
// into the concrete occurrences visible on the calendar.
package recurrence

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/interval"
)

// DefaultHorizonMonths bounds expansion when a rule has no explicit end
// date, guaranteeing termination.
const DefaultHorizonMonths = 12

var (
	// ErrInvalidInterval indicates a rule interval below 1.
	ErrInvalidInterval = errors.New("recurrence: interval must be at least 1")
	// ErrInvalidFrequency indicates an unsupported rule frequency.
	ErrInvalidFrequency = errors.New("recurrence: invalid frequency")
)

// Options restricts the expansion window. Both bounds are optional; when
// HorizonEnd is earlier than the rule's own end bound it takes precedence.
type Options struct {
	HorizonStart *time.Time
	HorizonEnd   *time.Time
}

// Expander turns template events into occurrence sequences. Expansion mints
// a fresh id per occurrence, so it is deliberately not idempotent: callers
// expand exactly once per template and persist the occurrences.
type Expander struct {
	idGenerator func() string
}

// NewExpander wires the id source for generated occurrences. A nil
// generator falls back to random UUIDs.
func NewExpander(idGenerator func() string) *Expander {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &Expander{idGenerator: idGenerator}
}

// Expand produces the ordered, finite occurrence sequence for a template.
//
// Semantics:
//   - A template without a rule is returned unchanged as a one-element
//     sequence, keeping its own id.
//   - The end bound is the rule's end date, or the template start plus the
//     default horizon. The bound is half-open: an occurrence starting at or
//     past it is excluded.
//   - Every occurrence inherits the template fields, carries a fresh id,
//     preserves the template duration and has its rule cleared.
func (e *Expander) Expand(template calendar.Event, opts Options) ([]calendar.Event, error) {
	rule := template.Recurrence
	if rule == nil {
		return []calendar.Event{template}, nil
	}

	if rule.Interval < 1 {
		return nil, ErrInvalidInterval
	}
	if !rule.Frequency.Valid() {
		return nil, ErrInvalidFrequency
	}

	end := template.Start.AddDate(0, DefaultHorizonMonths, 0)
	if rule.EndDate != nil {
		end = *rule.EndDate
	}
	if opts.HorizonEnd != nil && opts.HorizonEnd.Before(end) {
		end = *opts.HorizonEnd
	}

	duration := template.Duration()
	occurrences := make([]calendar.Event, 0)

	emit := func(start time.Time) {
		if !start.Before(end) {
			return
		}
		occEnd := start.Add(duration)
		if opts.HorizonStart != nil && occEnd.Before(*opts.HorizonStart) {
			return
		}
		occ := template.Clone()
		occ.ID = e.idGenerator()
		occ.Start = start
		occ.End = occEnd
		occ.Recurrence = nil
		occurrences = append(occurrences, occ)
	}

	switch rule.Frequency {
	case calendar.FrequencyDaily:
		for cursor := template.Start; cursor.Before(end); cursor = cursor.AddDate(0, 0, rule.Interval) {
			emit(cursor)
		}
	case calendar.FrequencyWeekly:
		if len(rule.Weekdays) > 0 {
			expandWeekdays(template, rule, end, emit)
		} else {
			for cursor := template.Start; cursor.Before(end); cursor = cursor.AddDate(0, 0, 7*rule.Interval) {
				emit(cursor)
			}
		}
	case calendar.FrequencyMonthly:
		for cursor := template.Start; cursor.Before(end); cursor = nextMonthly(cursor, rule) {
			emit(cursor)
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].Start.Before(occurrences[j].Start)
	})

	return occurrences, nil
}

// expandWeekdays emits one occurrence per selected weekday inside each
// 7-day window anchored at the cursor, each stamped with the template's
// time-of-day.
func expandWeekdays(template calendar.Event, rule *calendar.RecurrenceRule, end time.Time, emit func(time.Time)) {
	selected := make(map[time.Weekday]struct{}, len(rule.Weekdays))
	for _, day := range rule.Weekdays {
		selected[day] = struct{}{}
	}

	for cursor := template.Start; cursor.Before(end); cursor = cursor.AddDate(0, 0, 7*rule.Interval) {
		windowStart := interval.StartOfDay(cursor)
		for i := 0; i < 7; i++ {
			day := windowStart.AddDate(0, 0, i)
			if _, ok := selected[day.Weekday()]; !ok {
				continue
			}
			emit(interval.CombineDayTime(day, template.Start))
		}
	}
}

// nextMonthly advances the cursor by the rule interval in months, or jumps
// to the configured day of the following month when a month-day target is
// set.
func nextMonthly(cursor time.Time, rule *calendar.RecurrenceRule) time.Time {
	if rule.MonthDay > 0 {
		return time.Date(cursor.Year(), cursor.Month()+1, rule.MonthDay,
			cursor.Hour(), cursor.Minute(), cursor.Second(), cursor.Nanosecond(), cursor.Location())
	}
	return cursor.AddDate(0, rule.Interval, 0)
}

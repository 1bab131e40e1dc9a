// Package ics converts the event collection to and from iCalendar payloads
// so the calendar can exchange data with external subscriptions. Recurring
// VEVENTs are expanded into concrete occurrences within a bounded window at
// import time, matching the store's eager-materialization model.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/interval"
)

// maxOccurrencesPerEvent caps RRULE expansion so a malformed rule cannot
// blow up the import.
const maxOccurrencesPerEvent = 5000

// Converter translates between domain events and iCalendar payloads.
type Converter struct {
	idGenerator func() string
	logger      *slog.Logger
}

// NewConverter wires the id source used for imported events. A nil
// generator falls back to random UUIDs.
func NewConverter(idGenerator func() string, logger *slog.Logger) *Converter {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{idGenerator: idGenerator, logger: logger}
}

// Export serializes the collection as an iCalendar document. Only concrete
// occurrences exist in the store, so no RRULEs are emitted.
func (c *Converter) Export(events []calendar.Event, now time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//pocket-calendar//EN")

	for _, event := range events {
		if event.ID == "" {
			return "", fmt.Errorf("ics: event %q has no id", event.Title)
		}
		ve := cal.AddEvent(event.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(event.Title)
		if event.Description != "" {
			ve.SetDescription(event.Description)
		}
		if event.Location != "" {
			ve.SetLocation(event.Location)
		}
		if event.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, event.Category)
		}
		if event.AllDay {
			ve.SetAllDayStartAt(event.Start)
			ve.SetAllDayEndAt(event.End)
		} else {
			ve.SetStartAt(event.Start)
			ve.SetEndAt(event.End)
		}
	}

	return cal.Serialize(), nil
}

// Import parses an iCalendar payload and returns the concrete occurrences
// falling inside the window, each with a fresh id. Unparsable VEVENTs are
// logged and skipped; only a payload that fails to parse as a whole aborts.
func (c *Converter) Import(body []byte, window interval.Interval) ([]calendar.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty payload")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar: %w", err)
	}

	events := make([]calendar.Event, 0)
	for _, ve := range cal.Events() {
		parsed, err := parseVEvent(ve)
		if err != nil {
			c.logger.Warn("skipping calendar entry", "error", err)
			continue
		}

		if parsed.rawRRule == "" {
			if interval.Overlaps(interval.Interval{Start: parsed.start, End: parsed.end}, window) {
				events = append(events, c.toEvent(parsed, parsed.start, parsed.end))
			}
			continue
		}

		expanded, err := c.expandRule(parsed, window)
		if err != nil {
			c.logger.Warn("skipping recurring entry", "error", err, "rrule", parsed.rawRRule)
			continue
		}
		events = append(events, expanded...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// parsedVEvent is the normalized shape of a VEVENT before expansion.
type parsedVEvent struct {
	uid         string
	summary     string
	description string
	location    string
	category    string
	start       time.Time
	end         time.Time
	allDay      bool
	rawRRule    string
}

func parseVEvent(ve *ical.VEvent) (parsedVEvent, error) {
	var out parsedVEvent

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.uid = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.summary = p.Value
	}
	if out.summary == "" {
		return out, fmt.Errorf("vevent %q has no summary", out.uid)
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		out.category = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.rawRRule = p.Value
	}

	// All-day detection: VALUE=DATE or a date-only DTSTART value.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.allDay = true
		}
		if !strings.Contains(p.Value, "T") {
			out.allDay = true
		}
	}

	start, err := ve.GetStartAt()
	if err != nil {
		if start, err = ve.GetAllDayStartAt(); err != nil {
			return out, fmt.Errorf("vevent %q has no parseable start: %w", out.uid, err)
		}
		out.allDay = true
	}
	out.start = start

	end, err := ve.GetEndAt()
	if err != nil {
		if end, err = ve.GetAllDayEndAt(); err != nil {
			// DTEND is optional; all-day entries default to one day.
			end = start.Add(24 * time.Hour)
		}
	}
	out.end = end
	if !out.end.After(out.start) {
		out.end = out.start.Add(time.Hour)
	}

	return out, nil
}

func (c *Converter) expandRule(parsed parsedVEvent, window interval.Interval) ([]calendar.Event, error) {
	r, err := rrule.StrToRRule(parsed.rawRRule)
	if err != nil {
		return nil, fmt.Errorf("parse rrule: %w", err)
	}
	r.DTStart(parsed.start)

	var set rrule.Set
	set.RRule(r)

	starts := set.Between(window.Start, window.End, true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
		c.logger.Warn("truncated recurring entry", "uid", parsed.uid, "cap", maxOccurrencesPerEvent)
	}

	duration := parsed.end.Sub(parsed.start)
	events := make([]calendar.Event, 0, len(starts))
	for _, start := range starts {
		occStart := start
		occEnd := start.Add(duration)
		if parsed.allDay {
			occStart = interval.StartOfDay(start)
			occEnd = occStart.Add(24 * time.Hour)
		}
		events = append(events, c.toEvent(parsed, occStart, occEnd))
	}
	return events, nil
}

func (c *Converter) toEvent(parsed parsedVEvent, start, end time.Time) calendar.Event {
	return calendar.Materialize(calendar.Event{
		ID:          c.idGenerator(),
		Title:       parsed.summary,
		Description: parsed.description,
		Location:    parsed.location,
		Category:    parsed.category,
		Start:       start,
		End:         end,
		AllDay:      parsed.allDay,
	})
}

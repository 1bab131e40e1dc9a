package persistence

import (
	"time"

	"github.com/example/pocket-calendar/internal/calendar"
)

// Record is the serialized shape of an event. Start, End and the rule's
// EndDate round-trip as RFC 3339 instants; every other field round-trips
// as-is.
type Record struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Category    string      `json:"category,omitempty"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	AllDay      bool        `json:"allDay,omitempty"`
	Color       string      `json:"color,omitempty"`
	Recurrence  *RuleRecord `json:"recurrence,omitempty"`
}

// RuleRecord is the serialized shape of a recurrence rule.
type RuleRecord struct {
	Frequency  string     `json:"frequency"`
	Interval   int        `json:"interval"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek,omitempty"`
	MonthDay   int        `json:"monthDay,omitempty"`
}

// FromEvent converts a domain event into its stored representation.
func FromEvent(e calendar.Event) Record {
	rec := Record{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		Category:    e.Category,
		Start:       e.Start,
		End:         e.End,
		AllDay:      e.AllDay,
		Color:       e.Color,
	}
	if r := e.Recurrence; r != nil {
		rule := &RuleRecord{
			Frequency: string(r.Frequency),
			Interval:  r.Interval,
			MonthDay:  r.MonthDay,
		}
		if r.EndDate != nil {
			end := *r.EndDate
			rule.EndDate = &end
		}
		for _, day := range r.Weekdays {
			rule.DaysOfWeek = append(rule.DaysOfWeek, int(day))
		}
		rec.Recurrence = rule
	}
	return rec
}

// ToEvent converts a stored record back into a domain event.
func (r Record) ToEvent() calendar.Event {
	e := calendar.Event{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Category:    r.Category,
		Start:       r.Start,
		End:         r.End,
		AllDay:      r.AllDay,
		Color:       r.Color,
	}
	if rr := r.Recurrence; rr != nil {
		rule := &calendar.RecurrenceRule{
			Frequency: calendar.Frequency(rr.Frequency),
			Interval:  rr.Interval,
			MonthDay:  rr.MonthDay,
		}
		if rr.EndDate != nil {
			end := *rr.EndDate
			rule.EndDate = &end
		}
		for _, day := range rr.DaysOfWeek {
			rule.Weekdays = append(rule.Weekdays, time.Weekday(day))
		}
		e.Recurrence = rule
	}
	return e
}

// FromEvents converts a collection of domain events.
func FromEvents(events []calendar.Event) []Record {
	records := make([]Record, len(events))
	for i, e := range events {
		records[i] = FromEvent(e)
	}
	return records
}

// ToEvents converts a collection of stored records.
func ToEvents(records []Record) []calendar.Event {
	events := make([]calendar.Event, len(records))
	for i, r := range records {
		events[i] = r.ToEvent()
	}
	return events
}

// Package port implements the JSON import and export file contracts. Import
// is all-or-nothing: one malformed entry aborts the whole payload and the
// caller's collection is left untouched.
package port

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/pocket-calendar/internal/calendar"
)

// FormatError reports a malformed import payload, naming the failing entry.
// Index is -1 when the payload as a whole is invalid.
type FormatError struct {
	Index  int
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("import: %s", e.Reason)
	}
	return fmt.Sprintf("import: event at index %d %s", e.Index, e.Reason)
}

// importRecord is the tolerated wire shape of an imported event. Dates stay
// strings so multiple layouts can be accepted.
type importRecord struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Category    string      `json:"category"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	AllDay      bool        `json:"allDay"`
	Color       string      `json:"color"`
	Recurrence  *importRule `json:"recurrence"`
}

type importRule struct {
	Frequency  string     `json:"frequency"`
	Interval   int        `json:"interval"`
	EndDate    *time.Time `json:"endDate"`
	DaysOfWeek []int      `json:"daysOfWeek"`
	MonthDay   int        `json:"monthDay"`
}

// acceptedLayouts are tried in order when parsing imported date strings.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Import parses an externally supplied JSON array of events. Every entry
// must carry at least a title and parseable start/end dates; the first
// malformed entry aborts the import with a FormatError naming its index.
// Entries without an id keep an empty one for the store to fill in.
func Import(data []byte) ([]calendar.Event, error) {
	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &FormatError{Index: -1, Reason: "events must be a JSON array"}
	}

	events := make([]calendar.Event, 0, len(records))
	for i, rec := range records {
		if rec.Title == "" || rec.Start == "" || rec.End == "" {
			return nil, &FormatError{Index: i, Reason: "is missing required fields (title, start, or end)"}
		}

		start, ok := parseDate(rec.Start)
		if !ok {
			return nil, &FormatError{Index: i, Reason: "has an invalid start date"}
		}
		end, ok := parseDate(rec.End)
		if !ok {
			return nil, &FormatError{Index: i, Reason: "has an invalid end date"}
		}
		if end.Before(start) {
			return nil, &FormatError{Index: i, Reason: "has end before start"}
		}

		event := calendar.Materialize(calendar.Event{
			ID:          rec.ID,
			Title:       rec.Title,
			Description: rec.Description,
			Location:    rec.Location,
			Category:    rec.Category,
			Start:       start,
			End:         end,
			AllDay:      rec.AllDay,
			Color:       rec.Color,
		})

		if r := rec.Recurrence; r != nil {
			rule := &calendar.RecurrenceRule{
				Frequency: calendar.Frequency(r.Frequency),
				Interval:  r.Interval,
				MonthDay:  r.MonthDay,
			}
			if rule.Interval < 1 {
				rule.Interval = 1
			}
			if !rule.Frequency.Valid() {
				return nil, &FormatError{Index: i, Reason: "has an unsupported recurrence frequency"}
			}
			if r.EndDate != nil {
				endDate := *r.EndDate
				rule.EndDate = &endDate
			}
			for _, day := range r.DaysOfWeek {
				if day < 0 || day > 6 {
					return nil, &FormatError{Index: i, Reason: "has weekday indices outside 0-6"}
				}
				rule.Weekdays = append(rule.Weekdays, time.Weekday(day))
			}
			event.Recurrence = rule
		}

		events = append(events, event)
	}

	return events, nil
}

// Export serializes the full collection as a pretty-printed JSON array and
// returns the payload together with a filename stamped from now.
func Export(events []calendar.Event, now time.Time) ([]byte, string, error) {
	records := make([]exportRecord, len(events))
	for i, event := range events {
		records[i] = toExportRecord(event)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("export: encode events: %w", err)
	}

	filename := fmt.Sprintf("calendar-events-%s.json", now.Format("2006-01-02"))
	return data, filename, nil
}

// exportRecord mirrors importRecord but with typed dates so they serialize
// as RFC 3339.
type exportRecord struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Category    string      `json:"category,omitempty"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	AllDay      bool        `json:"allDay,omitempty"`
	Color       string      `json:"color,omitempty"`
	Recurrence  *importRule `json:"recurrence,omitempty"`
}

func toExportRecord(event calendar.Event) exportRecord {
	rec := exportRecord{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		Category:    event.Category,
		Start:       event.Start,
		End:         event.End,
		AllDay:      event.AllDay,
		Color:       event.Color,
	}
	if r := event.Recurrence; r != nil {
		rule := &importRule{
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

func parseDate(value string) (time.Time, bool) {
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package calendar

import "time"

// Frequency identifies the unit a recurrence rule steps in.
type Frequency string

const (
	// FrequencyDaily advances the cursor by Interval days per step.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly advances the cursor by Interval weeks per step.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly advances the cursor by Interval months per step.
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether the frequency is one of the supported values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

// RecurrenceRule describes how a template event repeats. It is present only
// on templates handed to the store; occurrences produced by expansion never
// carry a rule.
type RecurrenceRule struct {
	Frequency Frequency      `json:"frequency"`
	Interval  int            `json:"interval"`
	EndDate   *time.Time     `json:"endDate,omitempty"`
	Weekdays  []time.Weekday `json:"daysOfWeek,omitempty"`
	MonthDay  int            `json:"monthDay,omitempty"`
}

// Clone returns a deep copy of the rule.
func (r *RecurrenceRule) Clone() *RecurrenceRule {
	if r == nil {
		return nil
	}
	out := *r
	if r.EndDate != nil {
		end := *r.EndDate
		out.EndDate = &end
	}
	if r.Weekdays != nil {
		out.Weekdays = make([]time.Weekday, len(r.Weekdays))
		copy(out.Weekdays, r.Weekdays)
	}
	return &out
}

// DefaultColor is applied when an event is created without an explicit color.
const DefaultColor = "#2F3645"

// Event is the central calendar entity. Start and End are local wall-clock
// instants with End >= Start.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	Category    string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Color       string
	Recurrence  *RecurrenceRule
}

// Duration returns the length of the event interval.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Clone returns a copy of the event with its own rule instance.
func (e Event) Clone() Event {
	out := e
	out.Recurrence = e.Recurrence.Clone()
	return out
}

// TimeSlot is an ephemeral user selection of a not-yet-committed interval.
// It is never persisted; each new selection replaces the previous one.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// Materialize applies canonical defaults so every creation path agrees on
// the same optional-field values.
func Materialize(e Event) Event {
	if e.Color == "" {
		e.Color = DefaultColor
	}
	return e
}

// Validate checks the required-field and ordering constraints enforced at
// the form boundary. The store re-validates defensively before mutating.
func Validate(e Event) error {
	vErr := &ValidationError{}

	if e.Title == "" {
		vErr.Add("title", "title is required")
	}
	if e.Start.IsZero() {
		vErr.Add("start", "start is required")
	}
	if e.End.IsZero() {
		vErr.Add("end", "end is required")
	}
	if !e.Start.IsZero() && !e.End.IsZero() && e.End.Before(e.Start) {
		vErr.Add("time", "end must not be before start")
	}

	if r := e.Recurrence; r != nil {
		if !r.Frequency.Valid() {
			vErr.Add("recurrence.frequency", "frequency must be daily, weekly or monthly")
		}
		if r.Interval < 1 {
			vErr.Add("recurrence.interval", "interval must be at least 1")
		}
		for _, day := range r.Weekdays {
			if day < time.Sunday || day > time.Saturday {
				vErr.Add("recurrence.daysOfWeek", "weekday indices must be 0-6")
				break
			}
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

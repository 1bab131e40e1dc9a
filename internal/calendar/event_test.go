package calendar

import (
	"errors"
	"testing"
	"time"
)

func validEvent() Event {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.Local)
	return Event{
		Title: "Standup",
		Start: start,
		End:   start.Add(30 * time.Minute),
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		mutate    func(*Event)
		wantField string
	}{
		{
			name:   "valid event passes",
			mutate: func(*Event) {},
		},
		{
			name:      "missing title",
			mutate:    func(e *Event) { e.Title = "" },
			wantField: "title",
		},
		{
			name:      "missing start",
			mutate:    func(e *Event) { e.Start = time.Time{} },
			wantField: "start",
		},
		{
			name:      "missing end",
			mutate:    func(e *Event) { e.End = time.Time{} },
			wantField: "end",
		},
		{
			name:      "end before start",
			mutate:    func(e *Event) { e.End = e.Start.Add(-time.Minute) },
			wantField: "time",
		},
		{
			name: "unknown frequency",
			mutate: func(e *Event) {
				e.Recurrence = &RecurrenceRule{Frequency: "yearly", Interval: 1}
			},
			wantField: "recurrence.frequency",
		},
		{
			name: "interval below one",
			mutate: func(e *Event) {
				e.Recurrence = &RecurrenceRule{Frequency: FrequencyDaily, Interval: 0}
			},
			wantField: "recurrence.interval",
		},
		{
			name: "weekday out of range",
			mutate: func(e *Event) {
				e.Recurrence = &RecurrenceRule{
					Frequency: FrequencyWeekly,
					Interval:  1,
					Weekdays:  []time.Weekday{time.Weekday(7)},
				}
			},
			wantField: "recurrence.daysOfWeek",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event := validEvent()
			tc.mutate(&event)
			err := Validate(event)

			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid event, got %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.wantField]; !ok {
				t.Fatalf("expected field %q in %v", tc.wantField, vErr.FieldErrors)
			}
		})
	}
}

func TestValidate_ZeroDurationAllowed(t *testing.T) {
	t.Parallel()

	event := validEvent()
	event.End = event.Start
	if err := Validate(event); err != nil {
		t.Fatalf("zero-duration events must be valid, got %v", err)
	}
}

func TestMaterializeAppliesDefaultColor(t *testing.T) {
	t.Parallel()

	event := Materialize(validEvent())
	if event.Color != DefaultColor {
		t.Fatalf("expected %q, got %q", DefaultColor, event.Color)
	}

	event.Color = "#FF0000"
	if got := Materialize(event); got.Color != "#FF0000" {
		t.Fatalf("explicit color must survive, got %q", got.Color)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	endDate := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	event := validEvent()
	event.Recurrence = &RecurrenceRule{
		Frequency: FrequencyWeekly,
		Interval:  1,
		EndDate:   &endDate,
		Weekdays:  []time.Weekday{time.Monday},
	}

	clone := event.Clone()
	clone.Recurrence.Weekdays[0] = time.Friday
	*clone.Recurrence.EndDate = endDate.AddDate(1, 0, 0)

	if event.Recurrence.Weekdays[0] != time.Monday {
		t.Fatal("clone aliases the weekday slice")
	}
	if !event.Recurrence.EndDate.Equal(endDate) {
		t.Fatal("clone aliases the end date")
	}
}

func TestValidationErrorMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.Add("title", "title is required")

	other := &ValidationError{}
	other.Add("start", "start is required")

	base.Merge(other)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected 2 field errors after merge, got %d", len(base.FieldErrors))
	}
	base.Merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatal("merging nil must be a no-op")
	}
}

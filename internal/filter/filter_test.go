package filter

import (
	"testing"
	"time"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/interval"
)

func sampleEvents() []calendar.Event {
	day := func(d, hour int) time.Time {
		return time.Date(2024, time.January, d, hour, 0, 0, 0, time.Local)
	}
	return []calendar.Event{
		{
			ID:          "1",
			Title:       "Team sync",
			Description: "Weekly alignment",
			Category:    "work",
			Start:       day(8, 9),
			End:         day(8, 10),
		},
		{
			ID:          "2",
			Title:       "Dentist",
			Description: "Checkup",
			Category:    "personal",
			Start:       day(9, 14),
			End:         day(9, 15),
		},
		{
			ID:       "3",
			Title:    "Planning",
			Location: "Team room 4",
			Category: "work",
			Start:    day(15, 11),
			End:      day(15, 12),
		},
	}
}

func idsOf(events []calendar.Event) []string {
	ids := make([]string, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return ids
}

func TestApply_EmptyCriteriaReturnsCopy(t *testing.T) {
	t.Parallel()

	events := sampleEvents()
	out := Apply(events, Criteria{})
	if len(out) != len(events) {
		t.Fatalf("expected all %d events, got %d", len(events), len(out))
	}

	out[0].Title = "mutated"
	if events[0].Title == "mutated" {
		t.Fatal("Apply must not alias the input slice")
	}
}

func TestApply_QueryIsCaseInsensitiveAcrossTextFields(t *testing.T) {
	t.Parallel()

	// "team" must match the title of event 1 and the location of event 3.
	out := Apply(sampleEvents(), Criteria{Query: "TEAM"})
	got := idsOf(out)
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("expected events 1 and 3, got %v", got)
	}
}

func TestApply_QueryMatchesDescription(t *testing.T) {
	t.Parallel()

	out := Apply(sampleEvents(), Criteria{Query: "checkup"})
	if len(out) != 1 || out[0].ID != "2" {
		t.Fatalf("expected event 2, got %v", idsOf(out))
	}
}

func TestApply_CriteriaAreConjunctive(t *testing.T) {
	t.Parallel()

	out := Apply(sampleEvents(), Criteria{Query: "team", Category: "personal"})
	if len(out) != 0 {
		t.Fatalf("expected no events for query+category conjunction, got %v", idsOf(out))
	}

	out = Apply(sampleEvents(), Criteria{Query: "team", Category: "work"})
	if len(out) != 2 {
		t.Fatalf("expected 2 work events matching team, got %v", idsOf(out))
	}
}

func TestApply_RangeBoundsAreInclusive(t *testing.T) {
	t.Parallel()

	events := sampleEvents()
	// Event 1 ends exactly at 10:00 on Jan 8; a range starting at that very
	// instant still matches.
	rangeStart := time.Date(2024, time.January, 8, 10, 0, 0, 0, time.Local)
	r := interval.Interval{Start: rangeStart, End: rangeStart.Add(time.Hour)}

	out := Apply(events, Criteria{Range: &r})
	if len(out) != 1 || out[0].ID != "1" {
		t.Fatalf("expected event 1 at the inclusive bound, got %v", idsOf(out))
	}
}

func TestApply_RangeExcludesNonOverlapping(t *testing.T) {
	t.Parallel()

	r := interval.Interval{
		Start: time.Date(2024, time.January, 9, 0, 0, 0, 0, time.Local),
		End:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.Local),
	}
	out := Apply(sampleEvents(), Criteria{Range: &r})
	if len(out) != 1 || out[0].ID != "2" {
		t.Fatalf("expected only event 2 within Jan 9, got %v", idsOf(out))
	}
}

func TestMatches_CategoryIsExact(t *testing.T) {
	t.Parallel()

	event := sampleEvents()[0]
	if Matches(event, Criteria{Category: "Work"}) {
		t.Fatal("category match must be exact, not case-folded")
	}
	if !Matches(event, Criteria{Category: "work"}) {
		t.Fatal("expected exact category to match")
	}
}

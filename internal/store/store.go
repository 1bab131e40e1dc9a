// Package store owns the in-memory authoritative event collection and the
// mutations the views drive: create (with eager recurrence expansion),
// update, delete and drag-reschedule.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/interval"
	"github.com/example/pocket-calendar/internal/persistence"
	"github.com/example/pocket-calendar/internal/recurrence"
)

// Store is the explicitly owned event collection. It is handed by reference
// to whichever component needs it; there is no ambient singleton.
type Store struct {
	mu     sync.Mutex
	events []calendar.Event

	expander    *recurrence.Expander
	idGenerator func() string
	persister   persistence.Snapshotter
	logger      *slog.Logger
}

// New wires the store's collaborators. A nil id generator falls back to
// random UUIDs; a nil persister disables persistence.
func New(persister persistence.Snapshotter, expander *recurrence.Expander, idGenerator func() string, logger *slog.Logger) *Store {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if expander == nil {
		expander = recurrence.NewExpander(idGenerator)
	}
	return &Store{
		expander:    expander,
		idGenerator: idGenerator,
		persister:   persister,
		logger:      defaultLogger(logger),
	}
}

// LoadPersisted restores the collection from the persistence boundary. It
// is called once at startup, before any mutation.
func (s *Store) LoadPersisted(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	events, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("store: load persisted events: %w", err)
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
	return nil
}

// Add inserts a single event, or, when the input carries a recurrence rule,
// eagerly expands it and inserts every occurrence. The template itself is
// consumed: only occurrences are stored, none of which carry a rule. The
// inserted events are returned.
func (s *Store) Add(ctx context.Context, event calendar.Event) ([]calendar.Event, error) {
	logger := opLogger(ctx, s.logger, "add")

	event = calendar.Materialize(event)
	if err := calendar.Validate(event); err != nil {
		logger.Warn("rejected invalid event", "kind", errorKind(err))
		return nil, err
	}

	if event.ID == "" {
		event.ID = s.idGenerator()
	}

	inserted, err := s.expander.Expand(event, recurrence.Options{})
	if err != nil {
		logger.Warn("recurrence expansion failed", "kind", errorKind(err), "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.events = append(s.events, inserted...)
	s.mu.Unlock()

	logger.Info("events added", "count", len(inserted))
	s.persistAfterMutation(ctx, logger)
	return inserted, nil
}

// Update replaces the stored event with the matching id wholesale. The id
// itself is immutable. A missing id is reported as ErrNotFound rather than
// silently ignored.
func (s *Store) Update(ctx context.Context, id string, updated calendar.Event) (calendar.Event, error) {
	logger := opLogger(ctx, s.logger, "update", "event_id", id)

	updated = calendar.Materialize(updated)
	updated.ID = id
	if err := calendar.Validate(updated); err != nil {
		logger.Warn("rejected invalid event", "kind", errorKind(err))
		return calendar.Event{}, err
	}

	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		logger.Warn("event missing", "kind", errorKind(calendar.ErrNotFound))
		return calendar.Event{}, calendar.ErrNotFound
	}
	s.events[idx] = updated
	s.mu.Unlock()

	logger.Info("event updated")
	s.persistAfterMutation(ctx, logger)
	return updated, nil
}

// Remove deletes exactly one event by id.
func (s *Store) Remove(ctx context.Context, id string) error {
	logger := opLogger(ctx, s.logger, "remove", "event_id", id)

	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		logger.Warn("event missing", "kind", errorKind(calendar.ErrNotFound))
		return calendar.ErrNotFound
	}
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	s.mu.Unlock()

	logger.Info("event removed")
	s.persistAfterMutation(ctx, logger)
	return nil
}

// Move shifts one event by the delta between its current start and
// newStart, preserving its duration. The newEnd argument is advisory only:
// the resulting end is always start plus the original duration. Matching is
// by exact id equality.
func (s *Store) Move(ctx context.Context, id string, newStart, newEnd time.Time) (calendar.Event, error) {
	logger := opLogger(ctx, s.logger, "move", "event_id", id)
	_ = newEnd

	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		logger.Warn("event missing", "kind", errorKind(calendar.ErrNotFound))
		return calendar.Event{}, calendar.ErrNotFound
	}

	event := s.events[idx]
	delta := newStart.Sub(event.Start)
	shifted := interval.Interval{Start: event.Start, End: event.End}.Shift(delta)
	event.Start, event.End = shifted.Start, shifted.End
	s.events[idx] = event
	s.mu.Unlock()

	logger.Info("event moved", "delta", delta.String())
	s.persistAfterMutation(ctx, logger)
	return event, nil
}

// All returns a snapshot of the collection ordered by start instant, ties
// broken by id.
func (s *Store) All() []calendar.Event {
	s.mu.Lock()
	snapshot := make([]calendar.Event, len(s.events))
	copy(snapshot, s.events)
	s.mu.Unlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		if snapshot[i].Start.Equal(snapshot[j].Start) {
			return snapshot[i].ID < snapshot[j].ID
		}
		return snapshot[i].Start.Before(snapshot[j].Start)
	})
	return snapshot
}

// Replace swaps the whole collection, assigning ids to events that lack
// one. It backs the all-or-nothing import path; callers validate the new
// collection before handing it over.
func (s *Store) Replace(ctx context.Context, events []calendar.Event) error {
	logger := opLogger(ctx, s.logger, "replace")

	replacement := make([]calendar.Event, len(events))
	for i, event := range events {
		event = calendar.Materialize(event)
		if event.ID == "" {
			event.ID = s.idGenerator()
		}
		replacement[i] = event
	}

	s.mu.Lock()
	s.events = replacement
	s.mu.Unlock()

	logger.Info("collection replaced", "count", len(replacement))
	s.persistAfterMutation(ctx, logger)
	return nil
}

// indexOfLocked locates an event by exact id equality. Callers hold s.mu.
func (s *Store) indexOfLocked(id string) int {
	for i, event := range s.events {
		if event.ID == id {
			return i
		}
	}
	return -1
}

// persistAfterMutation requests a best-effort write of the full collection.
// A failed write never rolls back the in-memory mutation; it is logged and
// swallowed.
func (s *Store) persistAfterMutation(ctx context.Context, logger *slog.Logger) {
	if s.persister == nil {
		return
	}

	s.mu.Lock()
	snapshot := make([]calendar.Event, len(s.events))
	copy(snapshot, s.events)
	s.mu.Unlock()

	if err := s.persister.Save(ctx, snapshot); err != nil {
		logger.Error("failed to persist events", "error", err, "count", len(snapshot))
	}
}

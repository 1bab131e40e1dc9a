package persistence

import (
	"context"

	"github.com/example/pocket-calendar/internal/calendar"
)

// Snapshotter is the external persistence boundary: the store hands it the
// full event collection after every mutation and asks for it back at
// startup. The store treats writes as best-effort and never rolls back an
// in-memory mutation on a failed save.
type Snapshotter interface {
	Save(ctx context.Context, events []calendar.Event) error
	Load(ctx context.Context) ([]calendar.Event, error)
}

// Command calendar is the application shell around the event store: it
// loads the persisted collection, applies one action (list a window, add an
// event, import or export) and persists the result. There is no network
// surface; everything runs against local storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/pocket-calendar/internal/calendar"
	"github.com/example/pocket-calendar/internal/config"
	"github.com/example/pocket-calendar/internal/filter"
	"github.com/example/pocket-calendar/internal/grid"
	"github.com/example/pocket-calendar/internal/ics"
	"github.com/example/pocket-calendar/internal/interval"
	"github.com/example/pocket-calendar/internal/logging"
	"github.com/example/pocket-calendar/internal/persistence"
	"github.com/example/pocket-calendar/internal/persistence/jsonfile"
	"github.com/example/pocket-calendar/internal/persistence/sqlite"
	"github.com/example/pocket-calendar/internal/port"
	"github.com/example/pocket-calendar/internal/recurrence"
	"github.com/example/pocket-calendar/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "calendar.yaml", "path to the YAML configuration file")
		view       = flag.String("view", "month", "listing window: day, week or month")
		date       = flag.String("date", "", "reference date for the listing window (default today)")
		query      = flag.String("query", "", "case-insensitive search over title, description and location")
		category   = flag.String("category", "", "exact category filter")
		addTitle   = flag.String("add", "", "add an event with the given title")
		addStart   = flag.String("start", "", "start of the added event (e.g. 2024-01-01T09:00)")
		addEnd     = flag.String("end", "", "end of the added event")
		allDay     = flag.Bool("all-day", false, "mark the added event as all-day")
		importJSON = flag.String("import-json", "", "replace the collection from a JSON file")
		exportJSON = flag.String("export-json", "", "write the collection to a JSON file in this directory")
		importICS  = flag.String("import-ics", "", "merge occurrences from an iCalendar file")
		exportICS  = flag.String("export-ics", "", "write the collection to an iCalendar file")
	)
	flag.Parse()

	// .env is optional; real environment always wins.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	persister, cleanup, err := openBackend(cfg)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	events := store.New(persister, recurrence.NewExpander(nil), nil, logger)
	if err := events.LoadPersisted(ctx); err != nil {
		logger.Error("failed to load persisted events", "error", err)
		os.Exit(1)
	}

	switch {
	case *addTitle != "":
		err = addEvent(ctx, events, *addTitle, *addStart, *addEnd, *allDay)
	case *importJSON != "":
		err = runImportJSON(ctx, events, *importJSON, logger)
	case *exportJSON != "":
		err = runExportJSON(events, *exportJSON)
	case *importICS != "":
		err = runImportICS(ctx, events, *importICS, logger)
	case *exportICS != "":
		err = runExportICS(events, *exportICS)
	default:
		err = listWindow(events, cfg, *view, *date, *query, *category)
	}
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func openBackend(cfg config.Config) (persistence.Snapshotter, func(), error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	case config.StorageJSONFile:
		blob, err := jsonfile.New(cfg.DataFile)
		if err != nil {
			return nil, nil, err
		}
		return blob, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

func addEvent(ctx context.Context, events *store.Store, title, startValue, endValue string, allDay bool) error {
	start, err := parseFlagTime(startValue)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	end, err := parseFlagTime(endValue)
	if err != nil {
		return fmt.Errorf("parse -end: %w", err)
	}

	inserted, err := events.Add(ctx, calendar.Event{
		Title:  title,
		Start:  start,
		End:    end,
		AllDay: allDay,
	})
	if err != nil {
		return err
	}
	for _, event := range inserted {
		fmt.Printf("added %s  %s\n", event.ID, event.Title)
	}
	return nil
}

func listWindow(events *store.Store, cfg config.Config, view, date, query, category string) error {
	reference := time.Now()
	if date != "" {
		parsed, err := parseFlagTime(date)
		if err != nil {
			return fmt.Errorf("parse -date: %w", err)
		}
		reference = parsed
	}

	var window interval.Interval
	switch view {
	case "day":
		window = interval.DayRange(reference)
	case "week":
		start := interval.StartOfWeek(reference)
		window = interval.New(start, start.AddDate(0, 0, 7).Add(-time.Nanosecond))
	case "month":
		start := interval.StartOfMonth(reference)
		window = interval.New(start, start.AddDate(0, 1, 0).Add(-time.Nanosecond))
	default:
		return fmt.Errorf("unknown view %q", view)
	}

	visible := filter.Apply(events.All(), filter.Criteria{
		Query:    query,
		Category: category,
		Range:    &window,
	})

	adapter := grid.Adapter{FirstHour: cfg.FirstHour, LastHour: cfg.LastHour}
	for day := window.Start; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		dayEvents := adapter.EventsForDay(visible, day)
		if len(dayEvents) == 0 {
			continue
		}
		fmt.Println(day.Format("Mon 2006-01-02"))
		for _, event := range adapter.AllDayEvents(dayEvents, day) {
			fmt.Printf("  all day      %s\n", event.Title)
		}
		for _, event := range dayEvents {
			if event.AllDay {
				continue
			}
			fmt.Printf("  %s-%s  %s\n", event.Start.Format("15:04"), event.End.Format("15:04"), event.Title)
		}
	}
	return nil
}

func runImportJSON(ctx context.Context, events *store.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	imported, err := port.Import(data)
	if err != nil {
		return err
	}
	if err := events.Replace(ctx, imported); err != nil {
		return err
	}
	logger.Info("import complete", "count", len(imported), "path", path)
	return nil
}

func runExportJSON(events *store.Store, dir string) error {
	data, filename, err := port.Export(events.All(), time.Now())
	if err != nil {
		return err
	}
	target := filepath.Join(dir, filename)
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return err
	}
	fmt.Println(target)
	return nil
}

func runImportICS(ctx context.Context, events *store.Store, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	now := time.Now()
	window := interval.Interval{
		Start: interval.StartOfMonth(now),
		End:   now.AddDate(0, recurrence.DefaultHorizonMonths, 0),
	}

	converter := ics.NewConverter(nil, logger)
	imported, err := converter.Import(data, window)
	if err != nil {
		return err
	}

	for _, event := range imported {
		if _, err := events.Add(ctx, event); err != nil {
			return err
		}
	}
	logger.Info("ics import complete", "count", len(imported), "path", path)
	return nil
}

func runExportICS(events *store.Store, path string) error {
	converter := ics.NewConverter(nil, nil)
	payload, err := converter.Export(events.All(), time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func parseFlagTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	layouts := []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

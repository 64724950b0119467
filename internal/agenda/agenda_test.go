package agenda

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/database"
	"github.com/dukerupert/daybook/internal/model"
	"github.com/dukerupert/daybook/internal/store"
)

func setupService(t *testing.T, today caltime.Date) (*Service, *store.TodoStore, *store.EventStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	todos := store.NewTodoStore(db)
	events := store.NewEventStore(db)
	svc := NewService(events, todos, time.UTC,
		WithClock(func() time.Time { return today.At(caltime.MustDayTime(7, 0), time.UTC) }))
	return svc, todos, events
}

func TestDaySupersedesGhostWithEvent(t *testing.T) {
	// 2025-01-10 is a Friday.
	svc, todos, events := setupService(t, caltime.MustDate(2025, 1, 6))

	stretch, err := todos.Create(model.NewTodo{
		Title:    "Stretch",
		RepeatOn: []time.Weekday{time.Friday, time.Saturday},
		Duration: caltime.TimeRange{Start: caltime.MustDayTime(9, 0), End: caltime.MustDayTime(9, 30)},
	})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	_, err = events.Create(model.NewEvent{
		Title:      "Stretch",
		Date:       caltime.MustDate(2025, 1, 10),
		Duration:   stretch.Duration,
		SourceType: model.SourceGenerated,
		TodoID:     stretch.ID,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	fri, err := svc.Day(caltime.MustDate(2025, 1, 10))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(fri.Items) != 1 || fri.Items[0].IsGhost() {
		t.Fatalf("friday items = %+v, want the single real event", fri.Items)
	}

	sat, err := svc.Day(caltime.MustDate(2025, 1, 11))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(sat.Items) != 1 || !sat.Items[0].IsGhost() {
		t.Fatalf("saturday items = %+v, want one ghost", sat.Items)
	}
	if sat.Items[0].TodoID() != stretch.ID || sat.Ghosts() != 1 {
		t.Errorf("ghost todo id = %q", sat.Items[0].TodoID())
	}
}

func TestDayPastHasNoGhosts(t *testing.T) {
	svc, todos, _ := setupService(t, caltime.MustDate(2025, 1, 20))
	_, err := todos.Create(model.NewTodo{
		Title:    "Run",
		RepeatOn: []time.Weekday{time.Monday},
		Duration: caltime.TimeRange{Start: caltime.MustDayTime(7, 0), End: caltime.MustDayTime(8, 0)},
	})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}

	day, err := svc.Day(caltime.MustDate(2025, 1, 13))
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(day.Items) != 0 {
		t.Errorf("past day items = %d, want 0", len(day.Items))
	}

	today, err := svc.Today()
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if !today.Date.Equal(caltime.MustDate(2025, 1, 20)) || len(today.Items) != 1 {
		t.Errorf("today = %s with %d items", today.Date, len(today.Items))
	}
}

type failingEvents struct{}

var errDown = errors.New("store down")

func (failingEvents) ListForDate(caltime.Date) ([]model.Event, error) { return nil, errDown }

func TestDayPropagatesErrors(t *testing.T) {
	_, todos, _ := setupService(t, caltime.MustDate(2025, 1, 6))
	svc := NewService(failingEvents{}, todos, time.UTC)

	if _, err := svc.Day(caltime.MustDate(2025, 1, 6)); !errors.Is(err, errDown) {
		t.Errorf("error = %v, want errDown", err)
	}
	if _, err := svc.Day(caltime.Date{Year: 2025, Month: 13, Day: 1}); !errors.Is(err, caltime.ErrInvalidFormat) {
		t.Errorf("invalid date error = %v, want ErrInvalidFormat", err)
	}
}

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

func TestEventCreateAndGet(t *testing.T) {
	es := NewEventStore(setupTestDB(t))

	date := caltime.MustDate(2025, 1, 10)
	e, err := es.Create(model.NewEvent{
		Title:    "Dentist",
		Date:     date,
		Duration: slot("14:00", "15:00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := es.GetByID(e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected event, got nil")
	}
	if got.SourceType != model.SourceManual {
		t.Errorf("source = %q, want manual", got.SourceType)
	}
	if !got.Date.Equal(date) {
		t.Errorf("date = %s, want %s", got.Date, date)
	}
	if got.TodoID != "" {
		t.Errorf("todo id = %q, want empty", got.TodoID)
	}
	if got.IsDismissed || got.IsCompleted() {
		t.Error("new event should be neither dismissed nor completed")
	}
}

func TestEventCreateValidation(t *testing.T) {
	es := NewEventStore(setupTestDB(t))

	tests := []struct {
		name string
		in   model.NewEvent
	}{
		{"empty title", model.NewEvent{Date: caltime.MustDate(2025, 1, 1), Duration: slot("09:00", "10:00")}},
		{"bad source", model.NewEvent{Title: "x", SourceType: "imported", Date: caltime.MustDate(2025, 1, 1), Duration: slot("09:00", "10:00")}},
		{"bad date", model.NewEvent{Title: "x", Date: caltime.Date{Year: 2025, Month: 2, Day: 30}, Duration: slot("09:00", "10:00")}},
		{"bad duration", model.NewEvent{Title: "x", Date: caltime.MustDate(2025, 1, 1), Duration: caltime.TimeRange{Start: caltime.MustDayTime(9, 0), End: caltime.MustDayTime(8, 0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := es.Create(tt.in)
			if !errors.Is(err, caltime.ErrInvalidFormat) {
				t.Errorf("error = %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestEventListForDateAndRange(t *testing.T) {
	es := NewEventStore(setupTestDB(t))

	mk := func(title string, date caltime.Date, start, end string) {
		t.Helper()
		if _, err := es.Create(model.NewEvent{Title: title, Date: date, Duration: slot(start, end)}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	d1, d2, d3 := caltime.MustDate(2025, 1, 10), caltime.MustDate(2025, 1, 11), caltime.MustDate(2025, 1, 20)
	mk("late", d1, "15:00", "16:00")
	mk("early", d1, "08:00", "09:00")
	mk("next day", d2, "10:00", "11:00")
	mk("far", d3, "10:00", "11:00")

	day, err := es.ListForDate(d1)
	if err != nil {
		t.Fatalf("list for date: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 events, got %d", len(day))
	}
	if day[0].Title != "early" || day[1].Title != "late" {
		t.Errorf("order = %q, %q; want early, late", day[0].Title, day[1].Title)
	}

	rng, err := es.ListByDateRange(d1, d2)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(rng) != 3 {
		t.Errorf("expected 3 events in range, got %d", len(rng))
	}
}

func TestEventExistsAndFindForTodo(t *testing.T) {
	es := NewEventStore(setupTestDB(t))
	date := caltime.MustDate(2025, 1, 10)

	exists, err := es.ExistsForTodo("todo-1", date)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("expected no event before create")
	}

	e, err := es.Create(model.NewEvent{
		Title:      "Stretch",
		Date:       date,
		Duration:   slot("09:00", "09:30"),
		SourceType: model.SourceGenerated,
		TodoID:     "todo-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := es.Dismiss(e.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}

	exists, err = es.ExistsForTodo("todo-1", date)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("dismissed event should still count as existing")
	}

	found, err := es.FindForTodo("todo-1", date)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found == nil || found.ID != e.ID {
		t.Fatalf("find = %+v, want %s", found, e.ID)
	}
	if !found.IsDismissed {
		t.Error("expected dismissed flag")
	}

	missing, err := es.FindForTodo("todo-1", date.AddDays(1))
	if err != nil {
		t.Fatalf("find other day: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for other day, got %+v", missing)
	}
}

func TestEventOutlivesTodo(t *testing.T) {
	db := setupTestDB(t)
	ts, es := NewTodoStore(db), NewEventStore(db)

	todo, err := ts.Create(model.NewTodo{Title: "Stretch", RepeatOn: []time.Weekday{time.Friday}, Duration: slot("09:00", "09:30")})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	e, err := es.Create(model.NewEvent{
		Title:      todo.Title,
		Date:       caltime.MustDate(2025, 1, 10),
		Duration:   todo.Duration,
		SourceType: model.SourceGenerated,
		TodoID:     todo.ID,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := ts.Delete(todo.ID); err != nil {
		t.Fatalf("delete todo: %v", err)
	}

	got, err := es.GetByID(e.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got == nil {
		t.Fatal("event should survive its todo")
	}
	if got.TodoID != todo.ID {
		t.Errorf("todo id = %q, want dangling %q", got.TodoID, todo.ID)
	}
}

func TestEventUpdateAndComplete(t *testing.T) {
	es := NewEventStore(setupTestDB(t))

	e, err := es.Create(model.NewEvent{Title: "Call", Date: caltime.MustDate(2025, 1, 10), Duration: slot("12:00", "12:15")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newDate := caltime.MustDate(2025, 1, 11)
	updated, err := es.Update(e.ID, model.EventPatch{Title: ptr("Call mom"), Date: &newDate})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Call mom" || !updated.Date.Equal(newDate) {
		t.Errorf("got %q on %s", updated.Title, updated.Date)
	}

	at := time.Date(2025, 1, 11, 12, 20, 0, 0, time.UTC)
	if err := es.MarkCompleted(e.ID, at); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err := es.GetByID(e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(at) {
		t.Errorf("completed_at = %v, want %v", got.CompletedAt, at)
	}

	if _, err := es.Update("missing", model.EventPatch{Title: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}
	if err := es.MarkCompleted("missing", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("complete missing error = %v, want ErrNotFound", err)
	}
	if err := es.Dismiss("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("dismiss missing error = %v, want ErrNotFound", err)
	}
}

func TestEventDelete(t *testing.T) {
	es := NewEventStore(setupTestDB(t))

	e, err := es.Create(model.NewEvent{Title: "x", Date: caltime.MustDate(2025, 1, 10), Duration: slot("09:00", "10:00")})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := es.Delete(e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := es.Delete(e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestEventDeleteBefore(t *testing.T) {
	es := NewEventStore(setupTestDB(t))

	for _, d := range []caltime.Date{
		caltime.MustDate(2024, 12, 31),
		caltime.MustDate(2025, 1, 9),
		caltime.MustDate(2025, 1, 10),
		caltime.MustDate(2025, 1, 11),
	} {
		if _, err := es.Create(model.NewEvent{Title: "x", Date: d, Duration: slot("09:00", "10:00")}); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}

	n, err := es.DeleteBefore(caltime.MustDate(2025, 1, 10))
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}

	left, err := es.ListByDateRange(caltime.MustDate(2024, 1, 1), caltime.MustDate(2026, 1, 1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 2 {
		t.Errorf("remaining = %d, want 2", len(left))
	}
}

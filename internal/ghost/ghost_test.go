package ghost

import (
	"errors"
	"testing"
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

type fakeTodos struct {
	todos []model.Todo
	err   error
}

func (f fakeTodos) List() ([]model.Todo, error) {
	return f.todos, f.err
}

func TestForDate(t *testing.T) {
	slot := caltime.TimeRange{Start: caltime.MustDayTime(9, 0), End: caltime.MustDayTime(9, 30)}
	todos := fakeTodos{todos: []model.Todo{
		{ID: "t1", Title: "Stretch", Description: "10 min", RepeatOn: []time.Weekday{time.Friday}, Duration: slot},
		{ID: "t2", Title: "Run", RepeatOn: []time.Weekday{time.Saturday}},
		{ID: "t3", Title: "Template", RepeatOn: []time.Weekday{time.Friday}, IsTemplate: true},
		{ID: "t4", Title: "Read", RepeatOn: []time.Weekday{time.Monday, time.Friday}},
	}}

	g := NewGenerator(todos)
	friday := caltime.MustDate(2025, 1, 10)

	ghosts, err := g.ForDate(friday, friday)
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if len(ghosts) != 2 {
		t.Fatalf("got %d ghosts, want 2", len(ghosts))
	}

	got := ghosts[0]
	if got.ID != "ghost_t1" || got.TodoID != "t1" {
		t.Errorf("ghost ids = %q/%q, want ghost_t1/t1", got.ID, got.TodoID)
	}
	if got.Title != "Stretch" || got.Description != "10 min" {
		t.Errorf("ghost text = %q/%q", got.Title, got.Description)
	}
	if got.Duration != slot {
		t.Errorf("ghost duration = %v, want %v", got.Duration, slot)
	}
	if ghosts[1].TodoID != "t4" {
		t.Errorf("second ghost = %q, want t4", ghosts[1].TodoID)
	}
}

func TestForDatePastDayIsEmpty(t *testing.T) {
	todos := fakeTodos{todos: []model.Todo{
		{ID: "t1", RepeatOn: []time.Weekday{time.Thursday}},
	}}

	g := NewGenerator(todos)
	ghosts, err := g.ForDate(caltime.MustDate(2025, 1, 9), caltime.MustDate(2025, 1, 10))
	if err != nil {
		t.Fatalf("ForDate: %v", err)
	}
	if len(ghosts) != 0 {
		t.Errorf("got %d ghosts for a past day, want 0", len(ghosts))
	}
}

func TestForDateListError(t *testing.T) {
	boom := errors.New("boom")
	g := NewGenerator(fakeTodos{err: boom})

	_, err := g.ForDate(caltime.MustDate(2025, 1, 10), caltime.MustDate(2025, 1, 10))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped boom", err)
	}
}

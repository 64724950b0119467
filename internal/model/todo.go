package model

import (
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
)

// Todo is a recurring intention. Templates are patterns to clone and are
// never scheduled directly.
type Todo struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	RepeatOn    []time.Weekday     `json:"repeat_on"`
	IsTemplate  bool               `json:"is_template"`
	DateRange   *caltime.DateRange `json:"date_range,omitempty"`
	Duration    caltime.TimeRange  `json:"duration"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RepeatsOn reports whether wd is in the todo's repeat set.
func (t Todo) RepeatsOn(wd time.Weekday) bool {
	for _, d := range t.RepeatOn {
		if d == wd {
			return true
		}
	}
	return false
}

func (t Todo) IsRepeating() bool {
	return len(t.RepeatOn) > 0
}

type NewTodo struct {
	Title       string
	Description string
	RepeatOn    []time.Weekday
	IsTemplate  bool
	DateRange   *caltime.DateRange
	Duration    caltime.TimeRange
}

// TodoPatch holds a partial update. Nil fields are left unchanged;
// ClearDateRange removes the bound entirely.
type TodoPatch struct {
	Title          *string
	Description    *string
	RepeatOn       *[]time.Weekday
	IsTemplate     *bool
	DateRange      *caltime.DateRange
	ClearDateRange bool
	Duration       *caltime.TimeRange
}

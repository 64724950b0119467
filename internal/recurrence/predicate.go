package recurrence

import (
	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

// AppliesToDate reports whether todo should occur on date, judged as of today.
// Templates never apply, and nothing applies to a day before today.
func AppliesToDate(todo model.Todo, date, today caltime.Date) bool {
	if todo.IsTemplate {
		return false
	}
	if date.Before(today) {
		return false
	}
	if todo.DateRange != nil && !todo.DateRange.Contains(date) {
		return false
	}
	return todo.RepeatsOn(date.Weekday())
}

// Applicable filters todos down to those that apply to date.
func Applicable(todos []model.Todo, date, today caltime.Date) []model.Todo {
	var out []model.Todo
	for _, t := range todos {
		if AppliesToDate(t, date, today) {
			out = append(out, t)
		}
	}
	return out
}

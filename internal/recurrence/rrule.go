package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

// ErrNotRecurring is returned for todos that cannot be expressed as an RRULE.
var ErrNotRecurring = errors.New("todo does not recur")

var weekdayToRRule = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// WeeklyRule converts a todo's weekly pattern into an RRULE anchored at
// from (or the date range start, whichever is later) in loc. Templates
// and todos without repeat days have no rule.
func WeeklyRule(todo model.Todo, from caltime.Date, loc *time.Location) (*rrule.RRule, error) {
	if todo.IsTemplate || !todo.IsRepeating() {
		return nil, fmt.Errorf("%w: %s", ErrNotRecurring, todo.ID)
	}

	days := sortedWeekdays(todo.RepeatOn)
	byDay := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		byDay = append(byDay, weekdayToRRule[d])
	}

	start := from
	if todo.DateRange != nil && todo.DateRange.Start != nil && todo.DateRange.Start.After(start) {
		start = *todo.DateRange.Start
	}

	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byDay,
		Dtstart:   start.At(todo.Duration.Start, loc),
	}
	if todo.DateRange != nil && todo.DateRange.End != nil {
		opt.Until = todo.DateRange.End.At(todo.Duration.Start, loc)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build rrule for todo %s: %w", todo.ID, err)
	}
	return r, nil
}

// Describe returns a human-readable description of the todo's pattern.
func Describe(todo model.Todo) string {
	if todo.IsTemplate {
		return "Template"
	}
	if !todo.IsRepeating() {
		return "No repeat days"
	}

	days := sortedWeekdays(todo.RepeatOn)
	var desc string
	if len(days) == 7 {
		desc = "Repeats daily"
	} else {
		names := make([]string, 0, len(days))
		for _, d := range days {
			names = append(names, d.String()[:3])
		}
		desc = "Repeats weekly on " + strings.Join(names, ", ")
	}

	if todo.DateRange != nil && !todo.DateRange.IsUnbounded() {
		desc += " (" + todo.DateRange.String() + ")"
	}
	return desc
}

func sortedWeekdays(days []time.Weekday) []time.Weekday {
	seen := make(map[time.Weekday]bool, len(days))
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

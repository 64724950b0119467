// Package ics converts events and todos to and from iCalendar.
package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
	"github.com/dukerupert/daybook/internal/recurrence"
)

const (
	ProductID = "-//daybook//daybook//EN"
	uidDomain = "@daybook"
)

// Calendar builds a VCALENDAR with one VEVENT per event and one recurring
// VEVENT per todo that repeats on or after from. Templates and todos
// without repeat days are left out. Dismissed events are exported as
// cancelled.
func Calendar(events []model.Event, todos []model.Todo, from caltime.Date, loc *time.Location, now time.Time) (*ical.Calendar, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		ve := cal.AddEvent(e.ID + uidDomain)
		ve.SetDtStampTime(now)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		ve.SetStartAt(e.Date.At(e.Duration.Start, loc))
		ve.SetEndAt(e.Date.At(e.Duration.End, loc))
		if e.IsDismissed {
			ve.SetProperty(ical.ComponentPropertyStatus, "CANCELLED")
		}
	}

	for _, t := range todos {
		r, err := recurrence.WeeklyRule(t, from, loc)
		if errors.Is(err, recurrence.ErrNotRecurring) {
			continue
		}
		if err != nil {
			return nil, err
		}
		first := r.After(r.OrigOptions.Dtstart, true)
		if first.IsZero() {
			continue
		}

		ve := cal.AddEvent(t.ID + uidDomain)
		ve.SetDtStampTime(now)
		ve.SetSummary(t.Title)
		if t.Description != "" {
			ve.SetDescription(t.Description)
		}
		ve.SetStartAt(first)
		ve.SetEndAt(first.Add(time.Duration(t.Duration.Minutes()) * time.Minute))
		ve.SetProperty(ical.ComponentPropertyRrule, r.OrigOptions.RRuleString())
	}

	return cal, nil
}

// Export writes Calendar's output to w.
func Export(w io.Writer, events []model.Event, todos []model.Todo, from caltime.Date, loc *time.Location, now time.Time) error {
	cal, err := Calendar(events, todos, from, loc, now)
	if err != nil {
		return err
	}
	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

package ics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

var errAllDay = errors.New("all-day event")

// Result holds what Parse could convert. VEVENTs that span more than one
// day, are all-day, or recur in a way todos cannot express are counted in
// Skipped.
type Result struct {
	Events  []model.NewEvent
	Todos   []model.NewTodo
	Skipped int
}

// Parse reads a calendar and converts timed single-day VEVENTs into manual
// events and weekly recurring VEVENTs into todos, with times taken in loc.
func Parse(r io.Reader, loc *time.Location) (*Result, error) {
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	res := &Result{}
	for _, ve := range cal.Events() {
		if err := convert(ve, loc, res); err != nil {
			slog.Debug("skipping vevent", "uid", ve.Id(), "reason", err)
			res.Skipped++
		}
	}
	return res, nil
}

func convert(ve *ical.VEvent, loc *time.Location, res *Result) error {
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil && !strings.Contains(p.Value, "T") {
		return errAllDay
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	start, end = start.In(loc), end.In(loc)

	duration, date, err := slotOf(start, end)
	if err != nil {
		return err
	}

	var title, description string
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		description = p.Value
	}
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}

	p := ve.GetProperty(ical.ComponentPropertyRrule)
	if p == nil {
		dismissed := false
		if s := ve.GetProperty(ical.ComponentPropertyStatus); s != nil && strings.EqualFold(s.Value, "CANCELLED") {
			dismissed = true
		}
		res.Events = append(res.Events, model.NewEvent{
			Title:       title,
			Description: description,
			Date:        date,
			Duration:    duration,
			SourceType:  model.SourceManual,
			IsDismissed: dismissed,
		})
		return nil
	}

	days, until, err := weeklyPattern(p.Value, start)
	if err != nil {
		return err
	}
	dr := &caltime.DateRange{Start: &date}
	if until != nil {
		dr.End = until
	}
	res.Todos = append(res.Todos, model.NewTodo{
		Title:       title,
		Description: description,
		RepeatOn:    days,
		DateRange:   dr,
		Duration:    duration,
	})
	return nil
}

// slotOf maps [start, end) to a date and a time range on that date. An end
// at the following midnight becomes 24:00.
func slotOf(start, end time.Time) (caltime.TimeRange, caltime.Date, error) {
	date := caltime.DateOf(start)
	endDate := caltime.DateOf(end)

	startTime, err := caltime.NewDayTime(start.Hour(), start.Minute())
	if err != nil {
		return caltime.TimeRange{}, date, err
	}

	var endTime caltime.DayTime
	switch {
	case endDate.Equal(date):
		endTime, err = caltime.NewDayTime(end.Hour(), end.Minute())
		if err != nil {
			return caltime.TimeRange{}, date, err
		}
	case endDate.Equal(date.AddDays(1)) && end.Hour() == 0 && end.Minute() == 0:
		endTime = caltime.EndOfDay
	default:
		return caltime.TimeRange{}, date, fmt.Errorf("event spans %s to %s", date, endDate)
	}

	r, err := caltime.NewTimeRange(startTime, endTime)
	return r, date, err
}

// weeklyPattern extracts the weekdays and last date of a weekly RRULE.
// Rules with an interval, a count, or a frequency other than weekly are
// rejected.
func weeklyPattern(rule string, dtstart time.Time) ([]time.Weekday, *caltime.Date, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, nil, fmt.Errorf("rrule %q: %w", rule, err)
	}
	if opt.Freq != rrule.WEEKLY && opt.Freq != rrule.DAILY {
		return nil, nil, fmt.Errorf("unsupported frequency in %q", rule)
	}
	if opt.Interval > 1 || opt.Count > 0 {
		return nil, nil, fmt.Errorf("unsupported interval or count in %q", rule)
	}

	var days []time.Weekday
	switch {
	case len(opt.Byweekday) > 0:
		for _, wd := range opt.Byweekday {
			// rrule counts from Monday.
			days = append(days, time.Weekday((wd.Day()+1)%7))
		}
	case opt.Freq == rrule.DAILY:
		for d := time.Sunday; d <= time.Saturday; d++ {
			days = append(days, d)
		}
	default:
		days = []time.Weekday{dtstart.Weekday()}
	}

	var until *caltime.Date
	if !opt.Until.IsZero() {
		d := caltime.DateOf(opt.Until.In(dtstart.Location()))
		until = &d
	}
	return days, until, nil
}

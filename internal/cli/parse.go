package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// parseWeekdays accepts "mon,wed,fri", "1,3,5", "daily" or "weekdays".
func parseWeekdays(s string) ([]time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return nil, nil
	case "daily":
		return []time.Weekday{0, 1, 2, 3, 4, 5, 6}, nil
	case "weekdays":
		return []time.Weekday{1, 2, 3, 4, 5}, nil
	case "weekends":
		return []time.Weekday{0, 6}, nil
	}

	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if n, err := strconv.Atoi(part); err == nil {
			wd, err := caltime.WeekdayFromIndex(n)
			if err != nil {
				return nil, err
			}
			days = append(days, wd)
			continue
		}
		if len(part) >= 3 {
			if wd, ok := weekdayNames[part[:3]]; ok {
				days = append(days, wd)
				continue
			}
		}
		return nil, fmt.Errorf("%w: unknown weekday %q", caltime.ErrInvalidFormat, part)
	}
	return days, nil
}

// parseSlot parses "HH:MM-HH:MM".
func parseSlot(s string) (caltime.TimeRange, error) {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		return caltime.TimeRange{}, fmt.Errorf("%w: time slot %q, want HH:MM-HH:MM", caltime.ErrInvalidFormat, s)
	}
	return caltime.ParseTimeRange(strings.TrimSpace(start), strings.TrimSpace(end))
}

// parseDay accepts YYYY-MM-DD, "today", "tomorrow" and "yesterday".
func parseDay(s string, today caltime.Date) (caltime.Date, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	return caltime.ParseDate(s)
}

func parseOptionalDay(s string, today caltime.Date) (*caltime.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDay(s, today)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

package caltime

import "fmt"

// TimeRange is a slot within one day.
type TimeRange struct {
	Start DayTime `json:"start"`
	End   DayTime `json:"end"`
}

func NewTimeRange(start, end DayTime) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// ParseTimeRange parses a pair of "HH:MM" strings.
func ParseTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseDayTime(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseDayTime(end)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(s, e)
}

func (r TimeRange) Validate() error {
	if !r.Start.Valid() || !r.End.Valid() {
		return fmt.Errorf("%w: time range %s-%s out of range", ErrInvalidFormat, r.Start, r.End)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: time range ends at %s before it starts at %s", ErrInvalidFormat, r.End, r.Start)
	}
	return nil
}

// Overlaps reports whether r and o share any open interval.
// Ranges that only touch at an endpoint do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// Contains reports whether t lies in r, endpoints included.
func (r TimeRange) Contains(t DayTime) bool {
	return r.Start.BeforeOrEqual(t) && r.End.AfterOrEqual(t)
}

func (r TimeRange) Minutes() int {
	return r.End.Minutes() - r.Start.Minutes()
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// DateRange bounds a span of days. A nil Start is unbounded in the past,
// a nil End unbounded in the future.
type DateRange struct {
	Start *Date `json:"start,omitempty"`
	End   *Date `json:"end,omitempty"`
}

// Contains reports whether start <= d <= end.
func (r DateRange) Contains(d Date) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

func (r DateRange) IsUnbounded() bool {
	return r.Start == nil && r.End == nil
}

func (r DateRange) String() string {
	start, end := "..", ".."
	if r.Start != nil {
		start = r.Start.String()
	}
	if r.End != nil {
		end = r.End.String()
	}
	return start + "/" + end
}

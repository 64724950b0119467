package caltime

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// DayTime is a wall-clock time within a day at minute precision.
// 24:00 is accepted as the end-of-day sentinel.
type DayTime struct {
	Hour   int
	Minute int
}

var (
	StartOfDay = DayTime{Hour: 0, Minute: 0}
	EndOfDay   = DayTime{Hour: 24, Minute: 0}
)

func NewDayTime(hour, minute int) (DayTime, error) {
	t := DayTime{Hour: hour, Minute: minute}
	if !t.Valid() {
		return DayTime{}, fmt.Errorf("%w: time %02d:%02d out of range", ErrInvalidFormat, hour, minute)
	}
	return t, nil
}

func MustDayTime(hour, minute int) DayTime {
	t, err := NewDayTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDayTime parses "HH:MM".
func ParseDayTime(s string) (DayTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return DayTime{}, fmt.Errorf("%w: time %q: missing ':'", ErrInvalidFormat, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return DayTime{}, fmt.Errorf("%w: time %q: hour %q is not a number", ErrInvalidFormat, s, h)
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return DayTime{}, fmt.Errorf("%w: time %q: minute %q is not a number", ErrInvalidFormat, s, m)
	}
	return NewDayTime(hour, minute)
}

func (t DayTime) Valid() bool {
	if t.Hour == 24 && t.Minute == 0 {
		return true
	}
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (t DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight; EndOfDay is 1440.
func (t DayTime) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t DayTime) Compare(o DayTime) int {
	if t.Hour != o.Hour {
		return sign(t.Hour - o.Hour)
	}
	return sign(t.Minute - o.Minute)
}

func (t DayTime) Before(o DayTime) bool        { return t.Compare(o) < 0 }
func (t DayTime) After(o DayTime) bool         { return t.Compare(o) > 0 }
func (t DayTime) Equal(o DayTime) bool         { return t.Compare(o) == 0 }
func (t DayTime) BeforeOrEqual(o DayTime) bool { return t.Compare(o) <= 0 }
func (t DayTime) AfterOrEqual(o DayTime) bool  { return t.Compare(o) >= 0 }

func (t DayTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *DayTime) UnmarshalText(b []byte) error {
	parsed, err := ParseDayTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t DayTime) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *DayTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: cannot scan %T into DayTime", ErrInvalidFormat, src)
	}
}

package caltime

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  Date
	}{
		{"2025-01-10", Date{2025, 1, 10}},
		{"2025-01-10T14:30:00.000Z", Date{2025, 1, 10}},
		{"2024-02-29", Date{2024, 2, 29}},
		{" 1999-12-31 ", Date{1999, 12, 31}},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDateErrors(t *testing.T) {
	tests := []string{
		"",
		"2025-01",
		"2025/01/10",
		"2025-xx-10",
		"2025-13-01",
		"2025-02-29",
		"2025-04-31",
	}

	for _, input := range tests {
		_, err := ParseDate(input)
		if err == nil {
			t.Errorf("ParseDate(%q) should error", input)
			continue
		}
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseDate(%q) error %v does not wrap ErrInvalidFormat", input, err)
		}
	}
}

func TestDateRoundTrip(t *testing.T) {
	dates := []Date{{2025, 1, 1}, {2025, 12, 31}, {2024, 2, 29}, {33, 7, 4}}
	for _, d := range dates {
		got, err := ParseDate(d.String())
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", d.String(), err)
			continue
		}
		if !got.Equal(d) {
			t.Errorf("roundtrip %v -> %v", d, got)
		}
	}
}

func TestDateCompare(t *testing.T) {
	a := MustDate(2025, 1, 10)
	b := MustDate(2025, 1, 11)
	c := MustDate(2024, 12, 31)

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare ordering wrong: %d %d %d", a.Compare(b), b.Compare(a), a.Compare(a))
	}
	if !c.Before(a) {
		t.Error("2024-12-31 should be before 2025-01-10")
	}
	if !a.BeforeOrEqual(a) || !a.AfterOrEqual(a) {
		t.Error("a date should be <= and >= itself")
	}
	if a.After(b) {
		t.Error("2025-01-10 should not be after 2025-01-11")
	}
}

func TestDateWeekdayAndAddDays(t *testing.T) {
	d := MustDate(2025, 1, 10)
	if d.Weekday() != time.Friday {
		t.Errorf("2025-01-10 weekday = %v, want Friday", d.Weekday())
	}

	next := d.AddDays(22)
	if next != MustDate(2025, 2, 1) {
		t.Errorf("AddDays(22) = %v, want 2025-02-01", next)
	}
	prev := MustDate(2025, 3, 1).AddDays(-1)
	if prev != MustDate(2025, 2, 28) {
		t.Errorf("AddDays(-1) = %v, want 2025-02-28", prev)
	}
	if n := d.DaysUntil(next); n != 22 {
		t.Errorf("DaysUntil = %d, want 22", n)
	}
}

func TestDateAt(t *testing.T) {
	d := MustDate(2025, 1, 10)
	if got, want := d.At(MustDayTime(9, 30), time.UTC), time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("At(09:30) = %v, want %v", got, want)
	}
	if got, want := d.At(EndOfDay, time.UTC), time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("At(24:00) = %v, want %v", got, want)
	}

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	// Clocks jump from 02:00 to 03:00 on 2025-03-09.
	got := MustDate(2025, 3, 9).At(MustDayTime(9, 0), ny)
	if got.Hour() != 9 {
		t.Errorf("At(09:00) across DST = %v, want 09:00 local", got)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2025-03-04"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d != MustDate(2025, 3, 4) {
		t.Errorf("scan string = %v", d)
	}
	if err := d.Scan([]byte("2025-03-05")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if err := d.Scan(42); err == nil {
		t.Error("scan int should error")
	}
}

func TestParseDayTime(t *testing.T) {
	tests := []struct {
		input string
		want  DayTime
	}{
		{"00:00", DayTime{0, 0}},
		{"09:30", DayTime{9, 30}},
		{"23:59", DayTime{23, 59}},
		{"24:00", EndOfDay},
		{"7:05", DayTime{7, 5}},
	}

	for _, tt := range tests {
		got, err := ParseDayTime(tt.input)
		if err != nil {
			t.Errorf("ParseDayTime(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDayTime(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDayTimeErrors(t *testing.T) {
	tests := []string{"", "0930", "ab:30", "09:cd", "24:01", "25:00", "12:60", "-1:00"}

	for _, input := range tests {
		_, err := ParseDayTime(input)
		if err == nil {
			t.Errorf("ParseDayTime(%q) should error", input)
			continue
		}
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ParseDayTime(%q) error %v does not wrap ErrInvalidFormat", input, err)
		}
	}
}

func TestDayTimeRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m += 7 {
			dt := MustDayTime(h, m)
			got, err := ParseDayTime(dt.String())
			if err != nil {
				t.Fatalf("ParseDayTime(%q) error: %v", dt.String(), err)
			}
			if !got.Equal(dt) {
				t.Errorf("roundtrip %v -> %v", dt, got)
			}
		}
	}
	got, err := ParseDayTime(EndOfDay.String())
	if err != nil || !got.Equal(EndOfDay) {
		t.Errorf("EndOfDay roundtrip = %v, %v", got, err)
	}
}

func TestDayTimeMinutes(t *testing.T) {
	if got := MustDayTime(9, 45).Minutes(); got != 585 {
		t.Errorf("09:45 minutes = %d, want 585", got)
	}
	if got := EndOfDay.Minutes(); got != 1440 {
		t.Errorf("24:00 minutes = %d, want 1440", got)
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	r := func(s, e string) TimeRange {
		tr, err := ParseTimeRange(s, e)
		if err != nil {
			t.Fatalf("ParseTimeRange(%q, %q): %v", s, e, err)
		}
		return tr
	}

	tests := []struct {
		a, b TimeRange
		want bool
	}{
		{r("09:00", "10:00"), r("09:30", "10:30"), true},
		{r("09:00", "10:00"), r("10:00", "11:00"), false},
		{r("09:00", "10:00"), r("08:00", "09:00"), false},
		{r("09:00", "12:00"), r("10:00", "11:00"), true},
		{r("09:00", "10:00"), r("11:00", "12:00"), false},
		{r("00:00", "24:00"), r("23:00", "23:30"), true},
	}

	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%v overlaps %v = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Errorf("%v overlaps %v = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestTimeRangeValidate(t *testing.T) {
	if _, err := ParseTimeRange("10:00", "09:00"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("reversed range error = %v, want ErrInvalidFormat", err)
	}
	if _, err := ParseTimeRange("10:00", "10:00"); err != nil {
		t.Errorf("empty range should be valid: %v", err)
	}
}

func TestDateRangeContains(t *testing.T) {
	start := MustDate(2025, 1, 5)
	end := MustDate(2025, 1, 10)

	tests := []struct {
		name string
		r    DateRange
		date Date
		want bool
	}{
		{"inside", DateRange{&start, &end}, MustDate(2025, 1, 7), true},
		{"start inclusive", DateRange{&start, &end}, start, true},
		{"end inclusive", DateRange{&start, &end}, end, true},
		{"before", DateRange{&start, &end}, MustDate(2025, 1, 4), false},
		{"after", DateRange{&start, &end}, MustDate(2025, 1, 11), false},
		{"open start", DateRange{nil, &end}, MustDate(1, 1, 1), true},
		{"open end", DateRange{&start, nil}, MustDate(9999, 12, 31), true},
		{"unbounded", DateRange{}, MustDate(2025, 6, 1), true},
	}

	for _, tt := range tests {
		if got := tt.r.Contains(tt.date); got != tt.want {
			t.Errorf("%s: Contains(%v) = %v, want %v", tt.name, tt.date, got, tt.want)
		}
	}
}

func TestWeekdayFromIndex(t *testing.T) {
	if wd, err := WeekdayFromIndex(3); err != nil || wd != time.Wednesday {
		t.Errorf("WeekdayFromIndex(3) = %v, %v", wd, err)
	}
	for _, i := range []int{-1, 7} {
		if _, err := WeekdayFromIndex(i); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("WeekdayFromIndex(%d) error = %v, want ErrInvalidFormat", i, err)
		}
	}
}

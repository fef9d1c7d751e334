package domain

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar date counted in whole days since 1970-01-01.
// All streak, freeze and leaderboard arithmetic is done on Day values so
// that every component shares one definition of "a day".
type Day int32

// DayOf returns the calendar day t falls on in loc.
// A nil loc uses t's own location.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return DayFromDate(y, m, d)
}

// DayFromDate builds a Day from a civil date.
func DayFromDate(year int, month time.Month, day int) Day {
	u := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day(u.Unix() / 86400)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayFromDate(t.Date()), nil
}

// Time returns midnight of the day in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, dd := d.utc().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc)
}

func (d Day) utc() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Day) String() string {
	return d.utc().Format(dayLayout)
}

// AddDays returns the day n days after d.
func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// DaysSince returns d - earlier, clamped to zero when earlier is after d.
// Clock skew between devices must never produce a negative gap.
func (d Day) DaysSince(earlier Day) int {
	if d < earlier {
		return 0
	}
	return int(d - earlier)
}

// Month identifies the calendar month the day belongs to.
func (d Day) Month() Month {
	y, m, _ := d.utc().Date()
	return Month{Year: y, Month: m}
}

// WeekStart returns the Monday on or before d.
func (d Day) WeekStart() Day {
	wd := int(d.utc().Weekday())
	// Sunday is 0; shift so Monday is 0.
	offset := (wd + 6) % 7
	return d - Day(offset)
}

// Month is a calendar month, used to key monthly freeze quotas.
type Month struct {
	Year  int
	Month time.Month
}

// First returns the first day of the month.
func (m Month) First() Day {
	return DayFromDate(m.Year, m.Month, 1)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// ParseMonth parses a YYYY-MM string. The empty string yields the zero Month.
func ParseMonth(s string) (Month, error) {
	if s == "" {
		return Month{}, nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// IsZero reports whether the month was never set.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

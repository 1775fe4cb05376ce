package model

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock "HH:MM" value.
type TimeOfDay string

// ParseTimeOfDay normalizes inputs such as "8:00" to "08:00".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Format("15:04")), nil
}

// Minutes returns minutes since midnight, or -1 when malformed.
func (t TimeOfDay) Minutes() int {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

func (t TimeOfDay) Valid() bool {
	return t.Minutes() >= 0 && len(t) == 5
}

// Add shifts t by d, clamping to the same day.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	m := t.Minutes() + int(d/time.Minute)
	if m < 0 {
		m = 0
	}
	if m > 23*60+59 {
		m = 23*60 + 59
	}
	return TimeOfDay(fmt.Sprintf("%02d:%02d", m/60, m%60))
}

// On combines the calendar day of date with t in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	m := t.Minutes()
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, loc)
}

// DateOf strips the clock from t, keeping its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	d := DateOf(date)
	offset := int(d.Weekday()) - 1
	if d.Weekday() == time.Sunday {
		offset = 6
	}
	return d.AddDate(0, 0, -offset)
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the pt-BR label used for the five bookable days.
type Weekday string

const (
	Monday    Weekday = "segunda"
	Tuesday   Weekday = "terça"
	Wednesday Weekday = "quarta"
	Thursday  Weekday = "quinta"
	Friday    Weekday = "sexta"
)

// Weekdays lists bookable days in calendar order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
}

// ParseWeekday accepts labels with or without accents and in any case.
func ParseWeekday(s string) (Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "segunda", "segunda-feira":
		return Monday, nil
	case "terça", "terca", "terça-feira", "terca-feira":
		return Tuesday, nil
	case "quarta", "quarta-feira":
		return Wednesday, nil
	case "quinta", "quinta-feira":
		return Thursday, nil
	case "sexta", "sexta-feira":
		return Friday, nil
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// WeekdayOf returns the label of date, false for weekends.
func WeekdayOf(date time.Time) (Weekday, bool) {
	w, ok := weekdayByTime[date.Weekday()]
	return w, ok
}

func (w Weekday) Valid() bool {
	return w.Offset() >= 0
}

// Offset is the number of days between Monday and w.
func (w Weekday) Offset() int {
	for i, d := range Weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

// Short is the three letter label used on rendered grids.
func (w Weekday) Short() string {
	switch w {
	case Monday:
		return "SEG"
	case Tuesday:
		return "TER"
	case Wednesday:
		return "QUA"
	case Thursday:
		return "QUI"
	case Friday:
		return "SEX"
	}
	return "?"
}


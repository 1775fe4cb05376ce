package policy

import (
	"testing"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

var brt = time.FixedZone("BRT", -3*60*60)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, brt)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newPolicy() *Policy {
	cfg := DefaultConfig()
	cfg.Location = brt
	return New(cfg)
}

func availableSlot(t model.TimeOfDay) *model.Slot {
	return &model.Slot{Weekday: model.Wednesday, Time: t, Category: model.CategoryGraduado, Status: model.SlotStatusAvailable}
}

func hours() *model.OpeningHours {
	return &model.OpeningHours{Opening: "08:00", Closing: "18:00"}
}

func request(d time.Time, t model.TimeOfDay) Request {
	w, _ := model.WeekdayOf(d)
	return Request{PersonID: 1, Date: d, Time: t, Weekday: w, Category: model.CategoryGraduado}
}

func assertReason(t *testing.T, err error, want Reason) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("expected acceptance, got %v", err)
		}
		return
	}
	got, ok := ReasonOf(err)
	if !ok {
		t.Fatalf("expected %s, got %v", want, err)
	}
	if got != want {
		t.Fatalf("reason = %s, want %s", got, want)
	}
}

func TestReleaseGate(t *testing.T) {
	p := newPolicy()
	req := request(date(2024, 7, 3), "09:00")
	facts := Facts{Slot: availableSlot("09:00"), Hours: hours()}

	tests := []struct {
		name string
		now  time.Time
		want Reason
	}{
		{"monday 09:09", at(2024, 7, 1, 9, 9), ReasonTooEarlyInWeek},
		{"monday 09:10", at(2024, 7, 1, 9, 10), ""},
		{"monday 00:00", at(2024, 7, 1, 0, 0), ReasonTooEarlyInWeek},
		{"tuesday early", at(2024, 7, 2, 6, 0), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertReason(t, p.Evaluate(req, facts, tt.now), tt.want)
		})
	}
}

func TestReleaseGateSunday(t *testing.T) {
	p := newPolicy()
	req := request(date(2024, 7, 8), "09:00")
	facts := Facts{Slot: availableSlot("09:00"), Hours: hours()}

	assertReason(t, p.Evaluate(req, facts, at(2024, 7, 7, 12, 0)), "")
}

func TestPastSlotTruncatesToMinute(t *testing.T) {
	p := newPolicy()
	now := at(2024, 7, 3, 9, 0).Add(45 * time.Second)
	facts := Facts{Slot: availableSlot("09:00"), Hours: hours()}

	assertReason(t, p.Evaluate(request(date(2024, 7, 3), "09:00"), facts, now), "")

	facts.Slot = availableSlot("08:59")
	facts.Hours = nil
	assertReason(t, p.Evaluate(request(date(2024, 7, 3), "08:59"), facts, now), ReasonSlotInPast)
	assertReason(t, p.Evaluate(request(date(2024, 7, 2), "17:00"), facts, now), ReasonSlotInPast)
}

func TestCooldownBoundaries(t *testing.T) {
	p := newPolicy()
	now := at(2024, 7, 17, 10, 0)
	req := request(date(2024, 7, 18), "10:00")

	tests := []struct {
		name string
		last *time.Time
		want Reason
	}{
		{"no prior booking", nil, ""},
		{"today minus 14", ptr(date(2024, 7, 3)), ReasonCooldownActive},
		{"today minus 15", ptr(date(2024, 7, 2)), ReasonCooldownActive},
		{"today minus 16", ptr(date(2024, 7, 1)), ""},
		{"future booking", ptr(date(2024, 7, 25)), ReasonCooldownActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := Facts{LastBookingDate: tt.last, Slot: availableSlot("10:00"), Hours: hours()}
			assertReason(t, p.Evaluate(req, facts, now), tt.want)
		})
	}
}

func TestRuleOrder(t *testing.T) {
	p := newPolicy()
	recent := ptr(date(2024, 7, 2))
	unavailable := &model.Slot{Status: model.SlotStatusUnavailable}
	late := model.TimeOfDay("17:45")

	tests := []struct {
		name  string
		now   time.Time
		req   Request
		facts Facts
		want  Reason
	}{
		{
			name:  "everything fails",
			now:   at(2024, 7, 1, 8, 0),
			req:   request(date(2024, 6, 28), late),
			facts: Facts{LastBookingDate: recent, Slot: unavailable, Duplicate: true, Hours: hours()},
			want:  ReasonTooEarlyInWeek,
		},
		{
			name:  "past before cooldown",
			now:   at(2024, 7, 3, 12, 0),
			req:   request(date(2024, 7, 3), "09:00"),
			facts: Facts{LastBookingDate: recent, Slot: unavailable, Duplicate: true, Hours: hours()},
			want:  ReasonSlotInPast,
		},
		{
			name:  "cooldown before slot",
			now:   at(2024, 7, 3, 8, 0),
			req:   request(date(2024, 7, 4), late),
			facts: Facts{LastBookingDate: recent, Slot: unavailable, Duplicate: true, Hours: hours()},
			want:  ReasonCooldownActive,
		},
		{
			name:  "missing slot before duplicate",
			now:   at(2024, 7, 3, 8, 0),
			req:   request(date(2024, 7, 4), late),
			facts: Facts{Duplicate: true, Hours: hours()},
			want:  ReasonSlotUnavailable,
		},
		{
			name:  "duplicate before window",
			now:   at(2024, 7, 3, 8, 0),
			req:   request(date(2024, 7, 4), late),
			facts: Facts{Slot: availableSlot(late), Duplicate: true, Hours: hours()},
			want:  ReasonAlreadyBooked,
		},
		{
			name:  "window last",
			now:   at(2024, 7, 3, 8, 0),
			req:   request(date(2024, 7, 4), late),
			facts: Facts{Slot: availableSlot(late), Hours: hours()},
			want:  ReasonOutsideAllowedWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertReason(t, p.Evaluate(tt.req, tt.facts, tt.now), tt.want)
		})
	}
}

func TestWithinWindow(t *testing.T) {
	p := newPolicy()
	h := model.OpeningHours{Opening: "08:00", Closing: "18:00"}

	checks := map[model.TimeOfDay]bool{
		"08:00": false,
		"08:09": false,
		"08:10": true,
		"12:00": true,
		"17:30": true,
		"17:31": false,
	}
	for tod, want := range checks {
		if got := p.WithinWindow(tod, h); got != want {
			t.Errorf("WithinWindow(%s) = %v, want %v", tod, got, want)
		}
	}
}

func ptr(t time.Time) *time.Time {
	return &t
}

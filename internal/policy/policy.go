// Package policy decides whether a prospective booking is currently legal.
// It performs no I/O: callers gather the facts and pass the clock.
package policy

import (
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

// Config holds the rule parameters.
type Config struct {
	Location      *time.Location
	ReleaseTime   model.TimeOfDay
	CooldownDays  int
	OpeningMargin time.Duration
	ClosingMargin time.Duration
}

func DefaultConfig() Config {
	return Config{
		Location:      time.Local,
		ReleaseTime:   "09:10",
		CooldownDays:  15,
		OpeningMargin: 10 * time.Minute,
		ClosingMargin: 30 * time.Minute,
	}
}

// Request is the booking a person asks for.
type Request struct {
	PersonID int64
	Date     time.Time
	Time     model.TimeOfDay
	Weekday  model.Weekday
	Category model.Category
}

// Facts is what the ledger and catalog know about the request.
type Facts struct {
	LastBookingDate *time.Time
	Slot            *model.Slot
	Duplicate       bool
	// Hours is optional; the window rule is skipped when nil.
	Hours *model.OpeningHours
}

type Policy struct {
	cfg Config
}

func New(cfg Config) *Policy {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Policy{cfg: cfg}
}

func (p *Policy) Location() *time.Location {
	return p.cfg.Location
}

// Evaluate returns nil or a *Rejection carrying the first failing rule.
func (p *Policy) Evaluate(req Request, facts Facts, now time.Time) error {
	now = now.In(p.cfg.Location)

	if now.Before(p.ReleaseInstant(now)) {
		return Reject(ReasonTooEarlyInWeek)
	}

	if p.InPast(req.Date, req.Time, now) {
		return Reject(ReasonSlotInPast)
	}

	if p.InCooldown(facts.LastBookingDate, now) {
		return Reject(ReasonCooldownActive)
	}

	if facts.Slot == nil || facts.Slot.Status != model.SlotStatusAvailable {
		return Reject(ReasonSlotUnavailable)
	}

	if facts.Duplicate {
		return Reject(ReasonAlreadyBooked)
	}

	if facts.Hours != nil && !p.WithinWindow(req.Time, *facts.Hours) {
		return Reject(ReasonOutsideAllowedWindow)
	}

	return nil
}

// ReleaseInstant is Monday of the current week at the release time.
func (p *Policy) ReleaseInstant(now time.Time) time.Time {
	now = now.In(p.cfg.Location)
	return p.cfg.ReleaseTime.On(model.WeekStart(now), p.cfg.Location)
}

// InPast compares against now truncated to the minute; equal is not past.
func (p *Policy) InPast(date time.Time, t model.TimeOfDay, now time.Time) bool {
	now = now.In(p.cfg.Location)
	current := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, p.cfg.Location)
	return t.On(date, p.cfg.Location).Before(current)
}

// InCooldown passes only when last is strictly before today minus the cooldown.
func (p *Policy) InCooldown(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	today := model.DateOf(now.In(p.cfg.Location))
	threshold := today.AddDate(0, 0, -p.cfg.CooldownDays)
	return !model.DateOf(*last).Before(threshold)
}

// WithinWindow checks t against [opening+margin, closing-margin].
func (p *Policy) WithinWindow(t model.TimeOfDay, hours model.OpeningHours) bool {
	earliest := hours.Opening.Add(p.cfg.OpeningMargin)
	latest := hours.Closing.Add(-p.cfg.ClosingMargin)
	m := t.Minutes()
	return m >= earliest.Minutes() && m <= latest.Minutes()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/policy"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository"
	"go.uber.org/zap"
)

// UpdatePublisher is notified after every successful mutation.
type UpdatePublisher interface {
	PublishRefresh(ctx context.Context, reason string)
}

type Option func(*AvailabilityService)

func WithClock(now func() time.Time) Option {
	return func(s *AvailabilityService) { s.now = now }
}

func WithCancelLeadTime(d time.Duration) Option {
	return func(s *AvailabilityService) { s.cancelLead = d }
}

// WithDefaultHours is used when the settings store has no row.
func WithDefaultHours(h model.OpeningHours) Option {
	return func(s *AvailabilityService) { s.defaultHours = h }
}

// AvailabilityService keeps the booking ledger and slot catalog consistent.
type AvailabilityService struct {
	store        repository.Store
	people       repository.PersonDirectory
	settings     repository.SettingsStore
	policy       *policy.Policy
	publisher    UpdatePublisher
	logger       *zap.Logger
	now          func() time.Time
	cancelLead   time.Duration
	defaultHours model.OpeningHours
}

func NewAvailabilityService(
	store repository.Store,
	people repository.PersonDirectory,
	settings repository.SettingsStore,
	pol *policy.Policy,
	publisher UpdatePublisher,
	logger *zap.Logger,
	opts ...Option,
) *AvailabilityService {
	s := &AvailabilityService{
		store:        store,
		people:       people,
		settings:     settings,
		policy:       pol,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
		cancelLead:   30 * time.Minute,
		defaultHours: model.OpeningHours{Opening: "08:00", Closing: "18:00"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateBookingInput struct {
	PersonID int64
	Date     time.Time
	Time     model.TimeOfDay
	Weekday  model.Weekday
	Category model.Category
}

// CreateBooking runs the policy and, on success, inserts the booking and
// takes the recurring slot in one transaction.
func (s *AvailabilityService) CreateBooking(ctx context.Context, actor model.Actor, in CreateBookingInput) (*model.Booking, error) {
	booking, err := s.createBooking(ctx, actor, in)
	observe("create", err)
	if err != nil {
		s.logRejection("create", err, zap.Int64("person_id", in.PersonID))
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("person_id", booking.PersonID),
		zap.String("date", booking.Date.Format(time.DateOnly)),
		zap.String("time", string(booking.Time)),
		zap.String("category", string(booking.Category)),
	)
	s.publisher.PublishRefresh(ctx, "booking.created")

	return booking, nil
}

func (s *AvailabilityService) createBooking(ctx context.Context, actor model.Actor, in CreateBookingInput) (*model.Booking, error) {
	if err := validateSchedule(in.Date, in.Time, in.Weekday); err != nil {
		return nil, err
	}
	if !in.Category.Valid() {
		return nil, invalid("unknown category %q", in.Category)
	}
	if !actor.IsAdmin() && actor.PersonID != in.PersonID {
		return nil, fmt.Errorf("%w: cannot book for another person", ErrForbidden)
	}

	person, err := s.people.GetByID(ctx, in.PersonID)
	if err != nil {
		return nil, fmt.Errorf("get person: %w", err)
	}
	if person == nil {
		return nil, notFound("person %d", in.PersonID)
	}
	if !actor.IsAdmin() && person.Category != in.Category {
		return nil, fmt.Errorf("%w: category %s not allowed", ErrForbidden, in.Category)
	}

	hours := s.OpeningHours(ctx)
	now := s.now()
	booking := &model.Booking{
		Date:     model.DateOf(in.Date),
		Time:     in.Time,
		Weekday:  in.Weekday,
		Category: in.Category,
		PersonID: in.PersonID,
		Status:   model.BookingStatusScheduled,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		last, err := tx.Bookings().LatestActiveDate(ctx, person.ID)
		if err != nil {
			return err
		}
		last = latest(last, person.LastBookingDate)

		slot, err := tx.Slots().Get(ctx, booking.SlotKey())
		if err != nil {
			return err
		}

		existing, err := tx.Bookings().FindActive(ctx, booking.Key(), 0)
		if err != nil {
			return err
		}

		req := policy.Request{
			PersonID: booking.PersonID,
			Date:     booking.Date,
			Time:     booking.Time,
			Weekday:  booking.Weekday,
			Category: booking.Category,
		}
		facts := policy.Facts{
			LastBookingDate: last,
			Slot:            slot,
			Duplicate:       existing != nil,
			Hours:           &hours,
		}
		if err := s.policy.Evaluate(req, facts, now); err != nil {
			return err
		}

		if err := tx.Bookings().Create(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return policy.Reject(policy.ReasonAlreadyBooked)
			}
			return err
		}

		claimed, err := tx.Slots().Claim(ctx, booking.SlotKey(), model.SlotStatusUnavailable)
		if err != nil {
			return err
		}
		if !claimed {
			return policy.Reject(policy.ReasonSlotUnavailable)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

type UpdateBookingInput struct {
	Date    time.Time
	Time    model.TimeOfDay
	Weekday model.Weekday
}

// UpdateBooking moves a scheduled booking to another date or time.
func (s *AvailabilityService) UpdateBooking(ctx context.Context, actor model.Actor, id int64, in UpdateBookingInput) (*model.Booking, error) {
	if err := validateSchedule(in.Date, in.Time, in.Weekday); err != nil {
		return nil, err
	}

	var (
		booking *model.Booking
		changed bool
	)
	now := s.now()

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		booking, err = s.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusScheduled {
			return policy.Reject(policy.ReasonBookingNotActive)
		}

		if model.DateOf(in.Date).Equal(model.DateOf(booking.Date)) && in.Time == booking.Time && in.Weekday == booking.Weekday {
			return nil
		}
		changed = true

		if s.policy.InPast(in.Date, in.Time, now) {
			return policy.Reject(policy.ReasonSlotInPast)
		}

		oldSlot := booking.SlotKey()
		newKey := model.BookingKey{Date: model.DateOf(in.Date), Time: in.Time, Weekday: in.Weekday, Category: booking.Category}
		sameSlot := newKey.Slot() == oldSlot

		conflict, err := tx.Bookings().FindActive(ctx, newKey, booking.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return policy.Reject(policy.ReasonAlreadyBooked)
		}

		if !sameSlot {
			target, err := tx.Slots().Get(ctx, newKey.Slot())
			if err != nil {
				return err
			}
			if target == nil || target.Status != model.SlotStatusAvailable {
				return policy.Reject(policy.ReasonSlotUnavailable)
			}
		}

		booking.Date = newKey.Date
		booking.Time = newKey.Time
		booking.Weekday = newKey.Weekday
		if err := tx.Bookings().UpdateSchedule(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrUniqueViolation) {
				return policy.Reject(policy.ReasonAlreadyBooked)
			}
			return err
		}

		if sameSlot {
			return tx.Slots().SetStatus(ctx, oldSlot, model.SlotStatusBooked)
		}

		if _, err := releaseSlot(ctx, tx, oldSlot, booking.ID); err != nil {
			return err
		}
		claimed, err := tx.Slots().Claim(ctx, newKey.Slot(), model.SlotStatusBooked)
		if err != nil {
			return err
		}
		if !claimed {
			return policy.Reject(policy.ReasonSlotUnavailable)
		}
		return nil
	})
	if !changed && err == nil {
		return booking, nil
	}
	observe("update", err)
	if err != nil {
		s.logRejection("update", err, zap.Int64("booking_id", id))
		return nil, err
	}

	s.logger.Info("Booking rescheduled",
		zap.Int64("booking_id", booking.ID),
		zap.String("date", booking.Date.Format(time.DateOnly)),
		zap.String("time", string(booking.Time)),
	)
	s.publisher.PublishRefresh(ctx, "booking.updated")

	return booking, nil
}

// CancelBooking cancels a scheduled booking and frees its slot. Non-admins
// must cancel at least the configured lead time before the appointment.
func (s *AvailabilityService) CancelBooking(ctx context.Context, actor model.Actor, id int64) error {
	now := s.now()
	by := model.CancelledByUser
	if actor.IsAdmin() {
		by = model.CancelledByAdmin
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		booking, err := s.loadOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if booking.Status != model.BookingStatusScheduled {
			return policy.Reject(policy.ReasonBookingNotActive)
		}
		if !actor.IsAdmin() && booking.StartsAt(s.policy.Location()).Sub(now) < s.cancelLead {
			return policy.Reject(policy.ReasonCancelTooLate)
		}

		if err := tx.Bookings().UpdateStatus(ctx, booking.ID, model.BookingStatusCancelled, &by); err != nil {
			return err
		}
		_, err = releaseSlot(ctx, tx, booking.SlotKey(), booking.ID)
		return err
	})
	observe("cancel", err)
	if err != nil {
		s.logRejection("cancel", err, zap.Int64("booking_id", id))
		return err
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", id),
		zap.String("cancelled_by", string(by)),
	)
	s.publisher.PublishRefresh(ctx, "booking.cancelled")

	return nil
}

// MarkRescheduled is called when an absence justification is approved.
// With release set the recurring slot is freed unless another booking holds it.
func (s *AvailabilityService) MarkRescheduled(ctx context.Context, id int64, release bool) (*model.Booking, error) {
	var booking *model.Booking

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		booking, err = tx.Bookings().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return notFound("booking %d", id)
		}
		if booking.Status != model.BookingStatusScheduled && booking.Status != model.BookingStatusCompleted {
			return policy.Reject(policy.ReasonBookingNotActive)
		}

		if err := tx.Bookings().UpdateStatus(ctx, id, model.BookingStatusRescheduled, nil); err != nil {
			return err
		}
		booking.Status = model.BookingStatusRescheduled

		if release {
			_, err = releaseSlot(ctx, tx, booking.SlotKey(), booking.ID)
		}
		return err
	})
	observe("reschedule", err)
	if err != nil {
		s.logRejection("reschedule", err, zap.Int64("booking_id", id))
		return nil, err
	}

	s.logger.Info("Booking marked rescheduled", zap.Int64("booking_id", id), zap.Bool("slot_released", release))
	s.publisher.PublishRefresh(ctx, "booking.rescheduled")

	return booking, nil
}

// OpeningHours falls back to the configured defaults when the store is
// empty or unreachable.
func (s *AvailabilityService) OpeningHours(ctx context.Context) model.OpeningHours {
	if s.settings == nil {
		return s.defaultHours
	}
	hours, err := s.settings.OpeningHours(ctx)
	if err != nil {
		s.logger.Warn("Failed to load opening hours, using defaults", zap.Error(err))
		return s.defaultHours
	}
	if hours == nil {
		return s.defaultHours
	}
	return *hours
}

func (s *AvailabilityService) loadOwned(ctx context.Context, tx repository.Tx, actor model.Actor, id int64) (*model.Booking, error) {
	booking, err := tx.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, notFound("booking %d", id)
	}
	if !actor.IsAdmin() && booking.PersonID != actor.PersonID {
		return nil, fmt.Errorf("%w: booking %d belongs to another person", ErrForbidden, id)
	}
	return booking, nil
}

func (s *AvailabilityService) logRejection(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("operation", op))
	if reason, ok := policy.ReasonOf(err); ok {
		s.logger.Info("Request rejected", append(fields, zap.String("reason", string(reason)))...)
		return
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrInvalidRequest) {
		s.logger.Info("Request refused", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Error("Request failed", append(fields, zap.Error(err))...)
}

// releaseSlot sets the slot AVAILABLE when no other scheduled booking
// holds it. Missing slots stay missing.
func releaseSlot(ctx context.Context, tx repository.Tx, key model.SlotKey, excludeID int64) (bool, error) {
	slot, err := tx.Slots().GetForUpdate(ctx, key)
	if err != nil {
		return false, err
	}
	if slot == nil || slot.Status == model.SlotStatusAvailable {
		return false, nil
	}

	held, err := tx.Bookings().HasScheduled(ctx, key, excludeID)
	if err != nil {
		return false, err
	}
	if held {
		return false, nil
	}

	if err := tx.Slots().SetStatus(ctx, key, model.SlotStatusAvailable); err != nil {
		return false, err
	}
	return true, nil
}

func validateSchedule(date time.Time, t model.TimeOfDay, weekday model.Weekday) error {
	if date.IsZero() {
		return invalid("date is required")
	}
	if !t.Valid() {
		return invalid("invalid time %q", t)
	}
	actual, ok := model.WeekdayOf(date)
	if !ok {
		return invalid("%s is not a weekday", date.Format(time.DateOnly))
	}
	if actual != weekday {
		return invalid("weekday %q does not match %s", weekday, date.Format(time.DateOnly))
	}
	return nil
}

func latest(a, b *time.Time) *time.Time {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case b.After(*a):
		return b
	default:
		return a
	}
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/policy"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository"
	"go.uber.org/zap"
)

type BulkAvailabilityInput struct {
	Weekday  model.Weekday
	Category model.Category
	Times    []model.TimeOfDay
	Enable   bool
}

// BulkSetAvailability toggles a list of slots for one weekday and category.
// Enabling is all-or-nothing and refused while any slot has a scheduled
// booking; disabling always forces UNAVAILABLE.
func (s *AvailabilityService) BulkSetAvailability(ctx context.Context, actor model.Actor, in BulkAvailabilityInput) ([]*model.Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !in.Weekday.Valid() || !in.Category.Valid() {
		return nil, invalid("weekday and category are required")
	}
	times, err := uniqueTimes(in.Times)
	if err != nil {
		return nil, err
	}

	status := model.SlotStatusUnavailable
	if in.Enable {
		status = model.SlotStatusAvailable
	}

	var affected []*model.Slot
	err = s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if in.Enable {
			// Lock every row before reading the ledger so a booking claiming
			// one of them is visible once its transaction commits.
			for _, t := range times {
				if _, err := tx.Slots().GetForUpdate(ctx, model.SlotKey{Weekday: in.Weekday, Time: t, Category: in.Category}); err != nil {
					return err
				}
			}
			for _, t := range times {
				held, err := tx.Bookings().HasScheduled(ctx, model.SlotKey{Weekday: in.Weekday, Time: t, Category: in.Category}, 0)
				if err != nil {
					return err
				}
				if held {
					return policy.Reject(policy.ReasonSlotHasActiveBooking)
				}
			}
		}

		for _, t := range times {
			slot := &model.Slot{Weekday: in.Weekday, Time: t, Category: in.Category, Status: status}
			if err := tx.Slots().Upsert(ctx, slot); err != nil {
				return err
			}
			affected = append(affected, slot)
		}
		return nil
	})
	observe("bulk", err)
	if err != nil {
		s.logRejection("bulk", err, zap.String("weekday", string(in.Weekday)))
		return nil, err
	}

	s.logger.Info("Slots toggled",
		zap.String("weekday", string(in.Weekday)),
		zap.String("category", string(in.Category)),
		zap.Int("count", len(affected)),
		zap.Bool("enable", in.Enable),
	)
	s.publisher.PublishRefresh(ctx, "slots.bulk")

	return affected, nil
}

type CheckBulkInput struct {
	Date     time.Time
	Category model.Category
	Times    map[model.Weekday][]model.TimeOfDay
}

// CheckBulk resolves each weekday to its date in the week of in.Date and
// returns the active booking per requested time, nil where there is none.
func (s *AvailabilityService) CheckBulk(ctx context.Context, in CheckBulkInput) (map[model.Weekday]map[model.TimeOfDay]*model.Booking, error) {
	if in.Date.IsZero() || !in.Category.Valid() {
		return nil, invalid("date and category are required")
	}

	weekStart := model.WeekStart(in.Date)
	bookings, err := s.store.Bookings().ListActiveInRange(ctx, in.Category, weekStart, weekStart.AddDate(0, 0, len(model.Weekdays)-1))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	type cell struct {
		weekday model.Weekday
		time    model.TimeOfDay
	}
	index := make(map[cell]*model.Booking, len(bookings))
	for _, b := range bookings {
		if !model.DateOf(b.Date).Equal(weekStart.AddDate(0, 0, b.Weekday.Offset())) {
			continue
		}
		index[cell{b.Weekday, b.Time}] = b
	}

	result := make(map[model.Weekday]map[model.TimeOfDay]*model.Booking, len(in.Times))
	for weekday, times := range in.Times {
		if !weekday.Valid() {
			return nil, invalid("unknown weekday %q", weekday)
		}
		row := make(map[model.TimeOfDay]*model.Booking, len(times))
		for _, t := range times {
			row[t] = index[cell{weekday, t}]
		}
		result[weekday] = row
	}

	return result, nil
}

// QueryGrid returns every slot grouped by weekday then category.
func (s *AvailabilityService) QueryGrid(ctx context.Context) (model.Grid, error) {
	slots, err := s.store.Slots().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	grid := make(model.Grid, len(model.Weekdays))
	for _, w := range model.Weekdays {
		grid[w] = make(map[model.Category][]*model.Slot, len(model.Categories))
	}
	for _, slot := range slots {
		row, ok := grid[slot.Weekday]
		if !ok {
			continue
		}
		row[slot.Category] = append(row[slot.Category], slot)
	}
	for _, row := range grid {
		for _, list := range row {
			sort.Slice(list, func(i, j int) bool { return list[i].Time < list[j].Time })
		}
	}

	return grid, nil
}

func (s *AvailabilityService) ListTimes(ctx context.Context) ([]model.TimeOfDay, error) {
	return s.store.Slots().ListDistinctTimes(ctx)
}

func (s *AvailabilityService) GetBooking(ctx context.Context, actor model.Actor, id int64) (*model.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking %d", id)
	}
	if !actor.IsAdmin() && booking.PersonID != actor.PersonID {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *AvailabilityService) ListPersonBookings(ctx context.Context, actor model.Actor, personID int64) ([]*model.Booking, error) {
	if !actor.IsAdmin() && actor.PersonID != personID {
		return nil, ErrForbidden
	}
	return s.store.Bookings().ListByPerson(ctx, personID)
}

// AddTime seeds an AVAILABLE slot for t on every weekday and category.
func (s *AvailabilityService) AddTime(ctx context.Context, actor model.Actor, t model.TimeOfDay) (int64, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	if !t.Valid() {
		return 0, invalid("invalid time %q", t)
	}

	var inserted int64
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		inserted, err = tx.Slots().SeedTime(ctx, t)
		return err
	})
	observe("add_time", err)
	if err != nil {
		return 0, fmt.Errorf("seed time: %w", err)
	}

	s.logger.Info("Time added to grid", zap.String("time", string(t)), zap.Int64("slots", inserted))
	s.publisher.PublishRefresh(ctx, "slots.time_added")

	return inserted, nil
}

// RemoveTime drops t from the whole grid unless a scheduled booking uses it.
func (s *AvailabilityService) RemoveTime(ctx context.Context, actor model.Actor, t model.TimeOfDay) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var keys []model.SlotKey
		for _, w := range model.Weekdays {
			for _, c := range model.Categories {
				key := model.SlotKey{Weekday: w, Time: t, Category: c}
				held, err := tx.Bookings().HasScheduled(ctx, key, 0)
				if err != nil {
					return err
				}
				if held {
					return policy.Reject(policy.ReasonSlotHasActiveBooking)
				}
				keys = append(keys, key)
			}
		}
		for _, key := range keys {
			if _, err := tx.Slots().RemoveIfExists(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	observe("remove_time", err)
	if err != nil {
		s.logRejection("remove_time", err, zap.String("time", string(t)))
		return err
	}

	s.logger.Info("Time removed from grid", zap.String("time", string(t)))
	s.publisher.PublishRefresh(ctx, "slots.time_removed")

	return nil
}

// UpsertSlot creates or overwrites one slot. Making a held slot AVAILABLE
// is refused like a bulk enable.
func (s *AvailabilityService) UpsertSlot(ctx context.Context, actor model.Actor, slot *model.Slot) (*model.Slot, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !slot.Weekday.Valid() || !slot.Time.Valid() || !slot.Category.Valid() {
		return nil, invalid("weekday, time and category are required")
	}
	switch slot.Status {
	case model.SlotStatusAvailable, model.SlotStatusUnavailable, model.SlotStatusBooked:
	default:
		return nil, invalid("unknown status %q", slot.Status)
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if slot.Status == model.SlotStatusAvailable {
			held, err := tx.Bookings().HasScheduled(ctx, slot.Key(), 0)
			if err != nil {
				return err
			}
			if held {
				return policy.Reject(policy.ReasonSlotHasActiveBooking)
			}
		}
		return tx.Slots().Upsert(ctx, slot)
	})
	observe("upsert_slot", err)
	if err != nil {
		s.logRejection("upsert_slot", err)
		return nil, err
	}

	s.publisher.PublishRefresh(ctx, "slots.upserted")
	return slot, nil
}

func (s *AvailabilityService) RemoveSlot(ctx context.Context, actor model.Actor, key model.SlotKey) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		held, err := tx.Bookings().HasScheduled(ctx, key, 0)
		if err != nil {
			return err
		}
		if held {
			return policy.Reject(policy.ReasonSlotHasActiveBooking)
		}
		removed, err := tx.Slots().RemoveIfExists(ctx, key)
		if err != nil {
			return err
		}
		if !removed {
			return notFound("slot %s %s %s", key.Weekday, key.Time, key.Category)
		}
		return nil
	})
	observe("remove_slot", err)
	if err != nil {
		s.logRejection("remove_slot", err)
		return err
	}

	s.publisher.PublishRefresh(ctx, "slots.removed")
	return nil
}

// UpdateOpeningHours changes the bounds used by the allowed-window rule.
func (s *AvailabilityService) UpdateOpeningHours(ctx context.Context, actor model.Actor, hours model.OpeningHours) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !hours.Opening.Valid() || !hours.Closing.Valid() || hours.Opening.Minutes() >= hours.Closing.Minutes() {
		return invalid("opening time must be before closing time")
	}
	if s.settings == nil {
		return fmt.Errorf("settings store not configured")
	}

	if err := s.settings.UpdateOpeningHours(ctx, hours); err != nil {
		return err
	}

	s.logger.Info("Opening hours updated", zap.String("opening", string(hours.Opening)), zap.String("closing", string(hours.Closing)))
	s.publisher.PublishRefresh(ctx, "settings.updated")
	return nil
}

func requireAdmin(actor model.Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin only", ErrForbidden)
	}
	return nil
}

func uniqueTimes(in []model.TimeOfDay) ([]model.TimeOfDay, error) {
	if len(in) == 0 {
		return nil, invalid("at least one time is required")
	}
	seen := make(map[model.TimeOfDay]struct{}, len(in))
	out := make([]model.TimeOfDay, 0, len(in))
	for _, t := range in {
		if !t.Valid() {
			return nil, invalid("invalid time %q", t)
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	// Fixed order keeps row locks from deadlocking.
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

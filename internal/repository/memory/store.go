// Package memory is an in-process Store used for local runs and tests.
// Every transaction holds the store mutex and is rolled back from a snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/repository"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

func (s *Store) Slots() repository.SlotCatalog {
	return &lockedSlots{store: s}
}

func (s *Store) Bookings() repository.BookingLedger {
	return &lockedBookings{store: s}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(&txView{slots: slotCatalog{s.state}, bookings: bookingLedger{s.state}}); err != nil {
		s.state = snapshot
		return err
	}

	return nil
}

type txView struct {
	slots    slotCatalog
	bookings bookingLedger
}

func (t *txView) Slots() repository.SlotCatalog {
	return t.slots
}

func (t *txView) Bookings() repository.BookingLedger {
	return t.bookings
}

type state struct {
	slots    map[model.SlotKey]*model.Slot
	bookings map[int64]*model.Booking
	nextSlot int64
	nextBook int64
}

func newState() *state {
	return &state{
		slots:    make(map[model.SlotKey]*model.Slot),
		bookings: make(map[int64]*model.Booking),
	}
}

func (s *state) clone() *state {
	c := &state{
		slots:    make(map[model.SlotKey]*model.Slot, len(s.slots)),
		bookings: make(map[int64]*model.Booking, len(s.bookings)),
		nextSlot: s.nextSlot,
		nextBook: s.nextBook,
	}
	for k, v := range s.slots {
		c.slots[k] = copySlot(v)
	}
	for k, v := range s.bookings {
		c.bookings[k] = copyBooking(v)
	}
	return c
}

func copySlot(s *model.Slot) *model.Slot {
	c := *s
	return &c
}

func copyBooking(b *model.Booking) *model.Booking {
	c := *b
	if b.CancelledBy != nil {
		by := *b.CancelledBy
		c.CancelledBy = &by
	}
	return &c
}

type slotCatalog struct {
	s *state
}

func (c slotCatalog) Get(_ context.Context, key model.SlotKey) (*model.Slot, error) {
	slot, ok := c.s.slots[key]
	if !ok {
		return nil, nil
	}
	return copySlot(slot), nil
}

// GetForUpdate needs no row lock: transactions already run one at a time.
func (c slotCatalog) GetForUpdate(ctx context.Context, key model.SlotKey) (*model.Slot, error) {
	return c.Get(ctx, key)
}

func (c slotCatalog) ListAll(_ context.Context) ([]*model.Slot, error) {
	slots := make([]*model.Slot, 0, len(c.s.slots))
	for _, slot := range c.s.slots {
		slots = append(slots, copySlot(slot))
	}
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if a.Weekday != b.Weekday {
			return a.Weekday.Offset() < b.Weekday.Offset()
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Time < b.Time
	})
	return slots, nil
}

func (c slotCatalog) ListDistinctTimes(_ context.Context) ([]model.TimeOfDay, error) {
	seen := make(map[model.TimeOfDay]struct{})
	var times []model.TimeOfDay
	for key := range c.s.slots {
		if _, ok := seen[key.Time]; ok {
			continue
		}
		seen[key.Time] = struct{}{}
		times = append(times, key.Time)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times, nil
}

func (c slotCatalog) Upsert(_ context.Context, slot *model.Slot) error {
	key := slot.Key()
	existing, ok := c.s.slots[key]
	if !ok {
		c.s.nextSlot++
		existing = &model.Slot{ID: c.s.nextSlot, Weekday: key.Weekday, Time: key.Time, Category: key.Category}
		c.s.slots[key] = existing
	}
	existing.Status = slot.Status
	existing.UpdatedAt = time.Now()

	slot.ID = existing.ID
	slot.UpdatedAt = existing.UpdatedAt
	return nil
}

func (c slotCatalog) SetStatus(ctx context.Context, key model.SlotKey, status model.SlotStatus) error {
	return c.Upsert(ctx, &model.Slot{Weekday: key.Weekday, Time: key.Time, Category: key.Category, Status: status})
}

func (c slotCatalog) Claim(_ context.Context, key model.SlotKey, status model.SlotStatus) (bool, error) {
	slot, ok := c.s.slots[key]
	if !ok || slot.Status != model.SlotStatusAvailable {
		return false, nil
	}
	slot.Status = status
	slot.UpdatedAt = time.Now()
	return true, nil
}

func (c slotCatalog) RemoveIfExists(_ context.Context, key model.SlotKey) (bool, error) {
	if _, ok := c.s.slots[key]; !ok {
		return false, nil
	}
	delete(c.s.slots, key)
	return true, nil
}

func (c slotCatalog) SeedTime(ctx context.Context, t model.TimeOfDay) (int64, error) {
	var inserted int64
	for _, weekday := range model.Weekdays {
		for _, category := range model.Categories {
			key := model.SlotKey{Weekday: weekday, Time: t, Category: category}
			if _, ok := c.s.slots[key]; ok {
				continue
			}
			if err := c.SetStatus(ctx, key, model.SlotStatusAvailable); err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}

type bookingLedger struct {
	s *state
}

func (l bookingLedger) conflict(key model.BookingKey, excludeID int64) bool {
	for _, b := range l.s.bookings {
		if b.ID != excludeID && b.Active() && b.Key() == key {
			return true
		}
	}
	return false
}

func (l bookingLedger) Create(_ context.Context, booking *model.Booking) error {
	booking.Date = model.DateOf(booking.Date)
	if booking.Active() && l.conflict(booking.Key(), 0) {
		return repository.ErrUniqueViolation
	}

	l.s.nextBook++
	now := time.Now()
	booking.ID = l.s.nextBook
	booking.CreatedAt = now
	booking.UpdatedAt = now
	l.s.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (l bookingLedger) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	b, ok := l.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return copyBooking(b), nil
}

func (l bookingLedger) ListByPerson(_ context.Context, personID int64) ([]*model.Booking, error) {
	out := l.filter(func(b *model.Booking) bool { return b.PersonID == personID })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (l bookingLedger) FindActive(_ context.Context, key model.BookingKey, excludeID int64) (*model.Booking, error) {
	key.Date = model.DateOf(key.Date)
	for _, b := range l.s.bookings {
		if b.ID != excludeID && b.Active() && b.Key() == key {
			return copyBooking(b), nil
		}
	}
	return nil, nil
}

func (l bookingLedger) HasScheduled(_ context.Context, key model.SlotKey, excludeID int64) (bool, error) {
	for _, b := range l.s.bookings {
		if b.ID != excludeID && b.Status == model.BookingStatusScheduled && b.SlotKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (l bookingLedger) ScheduledSlotKeys(_ context.Context) ([]model.SlotKey, error) {
	seen := make(map[model.SlotKey]struct{})
	var keys []model.SlotKey
	for _, b := range l.s.bookings {
		if b.Status != model.BookingStatusScheduled {
			continue
		}
		if _, ok := seen[b.SlotKey()]; ok {
			continue
		}
		seen[b.SlotKey()] = struct{}{}
		keys = append(keys, b.SlotKey())
	}
	return keys, nil
}

func (l bookingLedger) LatestActiveDate(_ context.Context, personID int64) (*time.Time, error) {
	var latest *time.Time
	for _, b := range l.s.bookings {
		if b.PersonID != personID || !b.Active() {
			continue
		}
		if latest == nil || b.Date.After(*latest) {
			d := b.Date
			latest = &d
		}
	}
	return latest, nil
}

func (l bookingLedger) ListActiveInRange(_ context.Context, category model.Category, from, to time.Time) ([]*model.Booking, error) {
	from, to = model.DateOf(from), model.DateOf(to)
	return l.sorted(func(b *model.Booking) bool {
		return b.Category == category && b.Active() && !b.Date.Before(from) && !b.Date.After(to)
	}), nil
}

func (l bookingLedger) ListScheduledUntil(_ context.Context, date time.Time) ([]*model.Booking, error) {
	date = model.DateOf(date)
	return l.sorted(func(b *model.Booking) bool {
		return b.Status == model.BookingStatusScheduled && !b.Date.After(date)
	}), nil
}

func (l bookingLedger) UpdateSchedule(_ context.Context, booking *model.Booking) error {
	stored, ok := l.s.bookings[booking.ID]
	if !ok {
		return fmt.Errorf("booking %d not found", booking.ID)
	}

	next := copyBooking(stored)
	next.Date = model.DateOf(booking.Date)
	next.Time = booking.Time
	next.Weekday = booking.Weekday
	if next.Active() && l.conflict(next.Key(), next.ID) {
		return repository.ErrUniqueViolation
	}

	next.UpdatedAt = time.Now()
	l.s.bookings[booking.ID] = next
	booking.UpdatedAt = next.UpdatedAt
	return nil
}

func (l bookingLedger) UpdateStatus(_ context.Context, id int64, status model.BookingStatus, cancelledBy *model.CancelledBy) error {
	stored, ok := l.s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %d not found", id)
	}
	if status != model.BookingStatusCancelled && !stored.Active() && l.conflict(stored.Key(), id) {
		return repository.ErrUniqueViolation
	}

	stored.Status = status
	stored.CancelledBy = nil
	if cancelledBy != nil {
		by := *cancelledBy
		stored.CancelledBy = &by
	}
	stored.UpdatedAt = time.Now()
	return nil
}

func (l bookingLedger) filter(keep func(*model.Booking) bool) []*model.Booking {
	var out []*model.Booking
	for _, b := range l.s.bookings {
		if keep(b) {
			out = append(out, copyBooking(b))
		}
	}
	return out
}

func (l bookingLedger) sorted(keep func(*model.Booking) bool) []*model.Booking {
	out := l.filter(keep)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}

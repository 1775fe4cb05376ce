package memory

import (
	"context"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

// lockedSlots and lockedBookings serve reads and writes outside WithinTx.
type lockedSlots struct {
	store *Store
}

func (l *lockedSlots) catalog() slotCatalog {
	return slotCatalog{l.store.state}
}

func (l *lockedSlots) Get(ctx context.Context, key model.SlotKey) (*model.Slot, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().Get(ctx, key)
}

func (l *lockedSlots) GetForUpdate(ctx context.Context, key model.SlotKey) (*model.Slot, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().GetForUpdate(ctx, key)
}

func (l *lockedSlots) ListAll(ctx context.Context) ([]*model.Slot, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().ListAll(ctx)
}

func (l *lockedSlots) ListDistinctTimes(ctx context.Context) ([]model.TimeOfDay, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().ListDistinctTimes(ctx)
}

func (l *lockedSlots) Upsert(ctx context.Context, slot *model.Slot) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().Upsert(ctx, slot)
}

func (l *lockedSlots) SetStatus(ctx context.Context, key model.SlotKey, status model.SlotStatus) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().SetStatus(ctx, key, status)
}

func (l *lockedSlots) Claim(ctx context.Context, key model.SlotKey, status model.SlotStatus) (bool, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().Claim(ctx, key, status)
}

func (l *lockedSlots) RemoveIfExists(ctx context.Context, key model.SlotKey) (bool, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().RemoveIfExists(ctx, key)
}

func (l *lockedSlots) SeedTime(ctx context.Context, t model.TimeOfDay) (int64, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.catalog().SeedTime(ctx, t)
}

type lockedBookings struct {
	store *Store
}

func (l *lockedBookings) ledger() bookingLedger {
	return bookingLedger{l.store.state}
}

func (l *lockedBookings) Create(ctx context.Context, booking *model.Booking) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().Create(ctx, booking)
}

func (l *lockedBookings) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().GetByID(ctx, id)
}

func (l *lockedBookings) ListByPerson(ctx context.Context, personID int64) ([]*model.Booking, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().ListByPerson(ctx, personID)
}

func (l *lockedBookings) FindActive(ctx context.Context, key model.BookingKey, excludeID int64) (*model.Booking, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().FindActive(ctx, key, excludeID)
}

func (l *lockedBookings) HasScheduled(ctx context.Context, key model.SlotKey, excludeID int64) (bool, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().HasScheduled(ctx, key, excludeID)
}

func (l *lockedBookings) ScheduledSlotKeys(ctx context.Context) ([]model.SlotKey, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().ScheduledSlotKeys(ctx)
}

func (l *lockedBookings) LatestActiveDate(ctx context.Context, personID int64) (*time.Time, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().LatestActiveDate(ctx, personID)
}

func (l *lockedBookings) ListActiveInRange(ctx context.Context, category model.Category, from, to time.Time) ([]*model.Booking, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().ListActiveInRange(ctx, category, from, to)
}

func (l *lockedBookings) ListScheduledUntil(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().ListScheduledUntil(ctx, date)
}

func (l *lockedBookings) UpdateSchedule(ctx context.Context, booking *model.Booking) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().UpdateSchedule(ctx, booking)
}

func (l *lockedBookings) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus, cancelledBy *model.CancelledBy) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.ledger().UpdateStatus(ctx, id, status, cancelledBy)
}

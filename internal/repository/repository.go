package repository

import (
	"context"
	"errors"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

// ErrUniqueViolation is returned when an insert or update collides with
// another active booking on the same date, time, weekday and category.
var ErrUniqueViolation = errors.New("active booking already exists")

// SlotCatalog stores the recurring weekly slots. It holds no rules.
type SlotCatalog interface {
	Get(ctx context.Context, key model.SlotKey) (*model.Slot, error)
	ListAll(ctx context.Context) ([]*model.Slot, error)
	ListDistinctTimes(ctx context.Context) ([]model.TimeOfDay, error)
	Upsert(ctx context.Context, slot *model.Slot) error
	// SetStatus creates the slot when it does not exist.
	SetStatus(ctx context.Context, key model.SlotKey, status model.SlotStatus) error
	// GetForUpdate is Get that also locks the row until the transaction
	// ends. Callers re-read the ledger after it returns.
	GetForUpdate(ctx context.Context, key model.SlotKey) (*model.Slot, error)
	// Claim moves an AVAILABLE slot to status and reports whether it did.
	Claim(ctx context.Context, key model.SlotKey, status model.SlotStatus) (bool, error)
	RemoveIfExists(ctx context.Context, key model.SlotKey) (bool, error)
	// SeedTime inserts AVAILABLE slots for t on every weekday and category
	// that does not have one yet.
	SeedTime(ctx context.Context, t model.TimeOfDay) (int64, error)
}

// BookingLedger stores concrete bookings.
type BookingLedger interface {
	// Create returns ErrUniqueViolation when the active key is taken.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	ListByPerson(ctx context.Context, personID int64) ([]*model.Booking, error)
	// FindActive looks up a non-cancelled booking by key, skipping excludeID.
	FindActive(ctx context.Context, key model.BookingKey, excludeID int64) (*model.Booking, error)
	// HasScheduled reports whether a SCHEDULED booking holds the recurring slot.
	HasScheduled(ctx context.Context, key model.SlotKey, excludeID int64) (bool, error)
	ScheduledSlotKeys(ctx context.Context) ([]model.SlotKey, error)
	LatestActiveDate(ctx context.Context, personID int64) (*time.Time, error)
	ListActiveInRange(ctx context.Context, category model.Category, from, to time.Time) ([]*model.Booking, error)
	// ListScheduledUntil returns SCHEDULED bookings dated on or before date.
	ListScheduledUntil(ctx context.Context, date time.Time) ([]*model.Booking, error)
	// UpdateSchedule rewrites date, time and weekday.
	UpdateSchedule(ctx context.Context, booking *model.Booking) error
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus, cancelledBy *model.CancelledBy) error
}

// Tx exposes the stores bound to one transaction.
type Tx interface {
	Slots() SlotCatalog
	Bookings() BookingLedger
}

// Store runs fn inside a transaction, rolling back when fn fails.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// PersonDirectory resolves people owned by the personnel directory.
type PersonDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.Person, error)
}

// SettingsStore keeps the admin-editable opening hours.
type SettingsStore interface {
	OpeningHours(ctx context.Context) (*model.OpeningHours, error)
	UpdateOpeningHours(ctx context.Context, hours model.OpeningHours) error
}

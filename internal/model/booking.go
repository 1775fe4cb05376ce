package model

import "time"

type BookingStatus string

const (
	BookingStatusScheduled   BookingStatus = "SCHEDULED"
	BookingStatusCompleted   BookingStatus = "COMPLETED"
	BookingStatusCancelled   BookingStatus = "CANCELLED"
	BookingStatusRescheduled BookingStatus = "RESCHEDULED"
)

type CancelledBy string

const (
	CancelledByAdmin CancelledBy = "ADMIN"
	CancelledByUser  CancelledBy = "USER"
)

// BookingKey is unique among non-cancelled bookings.
type BookingKey struct {
	Date     time.Time
	Time     TimeOfDay
	Weekday  Weekday
	Category Category
}

func (k BookingKey) Slot() SlotKey {
	return SlotKey{Weekday: k.Weekday, Time: k.Time, Category: k.Category}
}

type Booking struct {
	ID          int64         `json:"id"`
	Date        time.Time     `json:"date"`
	Time        TimeOfDay     `json:"time"`
	Weekday     Weekday       `json:"weekday"`
	Category    Category      `json:"category"`
	PersonID    int64         `json:"person_id"`
	Status      BookingStatus `json:"status"`
	CancelledBy *CancelledBy  `json:"cancelled_by"` // nil unless cancelled
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (b *Booking) Key() BookingKey {
	return BookingKey{Date: DateOf(b.Date), Time: b.Time, Weekday: b.Weekday, Category: b.Category}
}

func (b *Booking) SlotKey() SlotKey {
	return SlotKey{Weekday: b.Weekday, Time: b.Time, Category: b.Category}
}

// Active reports whether the booking still counts for uniqueness.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}

// StartsAt is the appointment instant in loc.
func (b *Booking) StartsAt(loc *time.Location) time.Time {
	return b.Time.On(b.Date, loc)
}

package model

import "time"

// Person is owned by the personnel directory; read-only here.
type Person struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Category        Category   `json:"category"`
	LastBookingDate *time.Time `json:"last_booking_date"`
}

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Actor is the authenticated caller resolved upstream.
type Actor struct {
	PersonID int64
	Role     Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// OpeningHours bounds the bookable part of the day.
type OpeningHours struct {
	Opening TimeOfDay `json:"opening_time"`
	Closing TimeOfDay `json:"closing_time"`
}

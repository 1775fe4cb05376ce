package model

import "time"

type SlotStatus string

const (
	SlotStatusAvailable   SlotStatus = "AVAILABLE"
	SlotStatusUnavailable SlotStatus = "UNAVAILABLE"
	SlotStatusBooked      SlotStatus = "BOOKED"
)

// SlotKey identifies a recurring weekly slot.
type SlotKey struct {
	Weekday  Weekday   `json:"weekday"`
	Time     TimeOfDay `json:"time"`
	Category Category  `json:"category"`
}

type Slot struct {
	ID        int64      `json:"id"`
	Weekday   Weekday    `json:"weekday"`
	Time      TimeOfDay  `json:"time"`
	Category  Category   `json:"category"`
	Status    SlotStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Slot) Key() SlotKey {
	return SlotKey{Weekday: s.Weekday, Time: s.Time, Category: s.Category}
}

// Grid groups slots by weekday then category, ordered by time.
type Grid map[Weekday]map[Category][]*Slot

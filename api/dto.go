// Package api holds the JSON shapes exchanged over HTTP.
package api

import (
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
)

type BookingResponse struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Weekday     string  `json:"weekday"`
	Category    string  `json:"category"`
	PersonID    int64   `json:"person_id"`
	Status      string  `json:"status"`
	CancelledBy *string `json:"cancelled_by"`
}

func FromBooking(b *model.Booking) *BookingResponse {
	if b == nil {
		return nil
	}
	resp := &BookingResponse{
		ID:       b.ID,
		Date:     b.Date.Format(time.DateOnly),
		Time:     string(b.Time),
		Weekday:  string(b.Weekday),
		Category: string(b.Category),
		PersonID: b.PersonID,
		Status:   string(b.Status),
	}
	if b.CancelledBy != nil {
		by := string(*b.CancelledBy)
		resp.CancelledBy = &by
	}
	return resp
}

func FromBookings(list []*model.Booking) []*BookingResponse {
	out := make([]*BookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, FromBooking(b))
	}
	return out
}

type SlotResponse struct {
	Time   string `json:"time"`
	Status string `json:"status"`
}

// GridResponse is weekday -> category -> slots ordered by time.
type GridResponse map[string]map[string][]SlotResponse

func FromGrid(g model.Grid) GridResponse {
	out := make(GridResponse, len(g))
	for weekday, row := range g {
		cats := make(map[string][]SlotResponse, len(row))
		for category, slots := range row {
			list := make([]SlotResponse, 0, len(slots))
			for _, s := range slots {
				list = append(list, SlotResponse{Time: string(s.Time), Status: string(s.Status)})
			}
			cats[string(category)] = list
		}
		out[string(weekday)] = cats
	}
	return out
}

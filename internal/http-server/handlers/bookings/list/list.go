package list

import (
	"context"
	"net/http"
	"strconv"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/api"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type PersonBookingsLister interface {
	ListPersonBookings(ctx context.Context, actor model.Actor, personID int64) ([]*model.Booking, error)
}

type Response struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings"`
}

func New(log *zap.Logger, lister PersonBookingsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.list.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
		if err != nil {
			response.BadRequest(w, r, "invalid person id")
			return
		}

		bookings, err := lister.ListPersonBookings(r.Context(), actor.From(r.Context()), personID)
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to list bookings", zap.Error(err))
			}
			return
		}

		render.JSON(w, r, Response{Bookings: api.FromBookings(bookings)})
	}
}

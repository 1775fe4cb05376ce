package update

import (
	"context"
	"net/http"
	"strconv"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/api"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/service"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/request"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type BookingUpdater interface {
	UpdateBooking(ctx context.Context, actor model.Actor, id int64, in service.UpdateBookingInput) (*model.Booking, error)
}

type Request struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Time    string `json:"time" validate:"required,timeofday"`
	Weekday string `json:"weekday" validate:"required,weekday"`
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *zap.Logger, updater BookingUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.update.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, r, "invalid booking id")
			return
		}

		var req Request
		if err := request.Decode(r, &req); err != nil {
			log.Info("Invalid request", zap.Error(err))
			response.BadRequest(w, r, err.Error())
			return
		}

		date, _ := model.ParseDate(req.Date)
		t, _ := model.ParseTimeOfDay(req.Time)
		weekday, _ := model.ParseWeekday(req.Weekday)

		booking, err := updater.UpdateBooking(r.Context(), actor.From(r.Context()), id, service.UpdateBookingInput{
			Date:    date,
			Time:    t,
			Weekday: weekday,
		})
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to update booking", zap.Error(err), zap.Int64("booking_id", id))
			}
			return
		}

		render.JSON(w, r, Response{Booking: api.FromBooking(booking)})
	}
}

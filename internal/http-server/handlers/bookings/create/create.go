package create

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/api"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/service"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/request"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type BookingCreator interface {
	CreateBooking(ctx context.Context, actor model.Actor, in service.CreateBookingInput) (*model.Booking, error)
}

type Request struct {
	PersonID int64  `json:"person_id" validate:"required,gt=0"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,timeofday"`
	Weekday  string `json:"weekday" validate:"required,weekday"`
	Category string `json:"category" validate:"required,category"`
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *zap.Logger, creator BookingCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := request.Decode(r, &req); err != nil {
			log.Info("Invalid request", zap.Error(err))
			response.BadRequest(w, r, err.Error())
			return
		}

		in, err := req.input()
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		booking, err := creator.CreateBooking(r.Context(), actor.From(r.Context()), in)
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to create booking", zap.Error(err))
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Booking: api.FromBooking(booking)})
	}
}

func (req Request) input() (service.CreateBookingInput, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return service.CreateBookingInput{}, err
	}
	t, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		return service.CreateBookingInput{}, err
	}
	weekday, err := model.ParseWeekday(req.Weekday)
	if err != nil {
		return service.CreateBookingInput{}, err
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return service.CreateBookingInput{}, err
	}

	return service.CreateBookingInput{
		PersonID: req.PersonID,
		Date:     date,
		Time:     t,
		Weekday:  weekday,
		Category: category,
	}, nil
}

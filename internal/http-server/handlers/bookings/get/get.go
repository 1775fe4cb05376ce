package get

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

type BookingGetter interface {
	GetBooking(ctx context.Context, actor model.Actor, id int64) (*model.Booking, error)
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *zap.Logger, getter BookingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.get.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, r, "invalid booking id")
			return
		}

		booking, err := getter.GetBooking(r.Context(), actor.From(r.Context()), id)
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to get booking", zap.Error(err))
			}
			return
		}

		render.JSON(w, r, Response{Booking: api.FromBooking(booking)})
	}
}

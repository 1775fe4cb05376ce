package cancel

import (
	"context"
	"net/http"
	"strconv"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type BookingCanceller interface {
	CancelBooking(ctx context.Context, actor model.Actor, id int64) error
}

func New(log *zap.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.cancel.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, r, "invalid booking id")
			return
		}

		if err := canceller.CancelBooking(r.Context(), actor.From(r.Context()), id); err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to cancel booking", zap.Error(err), zap.Int64("booking_id", id))
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

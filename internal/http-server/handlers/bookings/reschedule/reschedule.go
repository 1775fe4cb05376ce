package reschedule

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

type Rescheduler interface {
	MarkRescheduled(ctx context.Context, id int64, release bool) (*model.Booking, error)
}

type Request struct {
	ReleaseSlot bool `json:"release_slot"`
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

// New serves the callback used when an absence justification is approved.
// Only admins may call it.
func New(log *zap.Logger, rescheduler Rescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.reschedule.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		if !actor.From(r.Context()).IsAdmin() {
			response.Render(w, r, service.ErrForbidden)
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, r, "invalid booking id")
			return
		}

		var req Request
		if r.ContentLength != 0 {
			if err := request.Decode(r, &req); err != nil {
				response.BadRequest(w, r, err.Error())
				return
			}
		}

		booking, err := rescheduler.MarkRescheduled(r.Context(), id, req.ReleaseSlot)
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to mark booking rescheduled", zap.Error(err), zap.Int64("booking_id", id))
			}
			return
		}

		render.JSON(w, r, Response{Booking: api.FromBooking(booking)})
	}
}

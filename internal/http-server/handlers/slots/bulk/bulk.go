package bulk

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/service"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/request"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type AvailabilitySetter interface {
	BulkSetAvailability(ctx context.Context, actor model.Actor, in service.BulkAvailabilityInput) ([]*model.Slot, error)
}

type Request struct {
	Weekday  string   `json:"weekday" validate:"required,weekday"`
	Category string   `json:"category" validate:"required,category"`
	Times    []string `json:"times" validate:"required,min=1,dive,timeofday"`
	Enable   *bool    `json:"enable" validate:"required"`
}

type Response struct {
	response.Response
	Slots []*model.Slot `json:"slots"`
}

func New(log *zap.Logger, setter AvailabilitySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.bulk.New"

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

		weekday, _ := model.ParseWeekday(req.Weekday)
		category, _ := model.ParseCategory(req.Category)
		times := make([]model.TimeOfDay, 0, len(req.Times))
		for _, raw := range req.Times {
			t, _ := model.ParseTimeOfDay(raw)
			times = append(times, t)
		}

		slots, err := setter.BulkSetAvailability(r.Context(), actor.From(r.Context()), service.BulkAvailabilityInput{
			Weekday:  weekday,
			Category: category,
			Times:    times,
			Enable:   *req.Enable,
		})
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to toggle slots", zap.Error(err))
			}
			return
		}

		render.JSON(w, r, Response{Slots: slots})
	}
}

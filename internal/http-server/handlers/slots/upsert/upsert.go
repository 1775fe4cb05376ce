package upsert

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/request"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type SlotUpserter interface {
	UpsertSlot(ctx context.Context, actor model.Actor, slot *model.Slot) (*model.Slot, error)
}

type Request struct {
	Weekday  string `json:"weekday" validate:"required,weekday"`
	Time     string `json:"time" validate:"required,timeofday"`
	Category string `json:"category" validate:"required,category"`
	Status   string `json:"status" validate:"required,oneof=AVAILABLE UNAVAILABLE BOOKED"`
}

type Response struct {
	response.Response
	Slot *model.Slot `json:"slot,omitempty"`
}

func New(log *zap.Logger, upserter SlotUpserter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.upsert.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		weekday, _ := model.ParseWeekday(req.Weekday)
		t, _ := model.ParseTimeOfDay(req.Time)
		category, _ := model.ParseCategory(req.Category)

		slot, err := upserter.UpsertSlot(r.Context(), actor.From(r.Context()), &model.Slot{
			Weekday:  weekday,
			Time:     t,
			Category: category,
			Status:   model.SlotStatus(req.Status),
		})
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to upsert slot", zap.Error(err))
			}
			return
		}

		render.JSON(w, r, Response{Slot: slot})
	}
}

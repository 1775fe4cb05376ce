package hours

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

type HoursProvider interface {
	OpeningHours(ctx context.Context) model.OpeningHours
	UpdateOpeningHours(ctx context.Context, actor model.Actor, hours model.OpeningHours) error
}

type Request struct {
	Opening string `json:"opening_time" validate:"required,timeofday"`
	Closing string `json:"closing_time" validate:"required,timeofday"`
}

type Response struct {
	response.Response
	Hours model.OpeningHours `json:"hours"`
}

func Get(provider HoursProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, Response{Hours: provider.OpeningHours(r.Context())})
	}
}

func Update(log *zap.Logger, provider HoursProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.settings.hours.Update"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request
		if err := request.Decode(r, &req); err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		opening, _ := model.ParseTimeOfDay(req.Opening)
		closing, _ := model.ParseTimeOfDay(req.Closing)
		hours := model.OpeningHours{Opening: opening, Closing: closing}

		if err := provider.UpdateOpeningHours(r.Context(), actor.From(r.Context()), hours); err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to update opening hours", zap.Error(err))
			}
			return
		}

		render.JSON(w, r, Response{Hours: hours})
	}
}

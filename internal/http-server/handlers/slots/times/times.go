// Package times serves the distinct times of day offered on the grid.
package times

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/request"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type TimeCatalog interface {
	ListTimes(ctx context.Context) ([]model.TimeOfDay, error)
	AddTime(ctx context.Context, actor model.Actor, t model.TimeOfDay) (int64, error)
	RemoveTime(ctx context.Context, actor model.Actor, t model.TimeOfDay) error
}

type AddRequest struct {
	Time string `json:"time" validate:"required,timeofday"`
}

type ListResponse struct {
	response.Response
	Times []model.TimeOfDay `json:"times"`
}

type AddResponse struct {
	response.Response
	Created int64 `json:"created"`
}

func List(log *zap.Logger, catalog TimeCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		times, err := catalog.ListTimes(r.Context())
		if err != nil {
			log.Error("Failed to list times", zap.String("op", "handlers.slots.times.List"), zap.Error(err))
			response.Render(w, r, err)
			return
		}
		if times == nil {
			times = []model.TimeOfDay{}
		}

		render.JSON(w, r, ListResponse{Times: times})
	}
}

func Add(log *zap.Logger, catalog TimeCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.times.Add"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req AddRequest
		if err := request.Decode(r, &req); err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}
		t, _ := model.ParseTimeOfDay(req.Time)

		created, err := catalog.AddTime(r.Context(), actor.From(r.Context()), t)
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to add time", zap.Error(err))
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, AddResponse{Created: created})
	}
}

func Remove(log *zap.Logger, catalog TimeCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.times.Remove"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		t, err := model.ParseTimeOfDay(chi.URLParam(r, "time"))
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		if err := catalog.RemoveTime(r.Context(), actor.From(r.Context()), t); err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to remove time", zap.Error(err))
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

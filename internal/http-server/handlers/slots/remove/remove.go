package remove

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type SlotRemover interface {
	RemoveSlot(ctx context.Context, actor model.Actor, key model.SlotKey) error
}

func New(log *zap.Logger, remover SlotRemover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.remove.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		weekday, err := model.ParseWeekday(chi.URLParam(r, "weekday"))
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}
		t, err := model.ParseTimeOfDay(chi.URLParam(r, "time"))
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}
		category, err := model.ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		key := model.SlotKey{Weekday: weekday, Time: t, Category: category}
		if err := remover.RemoveSlot(r.Context(), actor.From(r.Context()), key); err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to remove slot", zap.Error(err))
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

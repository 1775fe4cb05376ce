package grid

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/api"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type GridQuerier interface {
	QueryGrid(ctx context.Context) (model.Grid, error)
}

type Response struct {
	response.Response
	Grid api.GridResponse `json:"grid"`
}

func New(log *zap.Logger, querier GridQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.grid.New"

		grid, err := querier.QueryGrid(r.Context())
		if err != nil {
			log.Error("Failed to query grid", zap.String("op", op),
				zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
			response.Render(w, r, err)
			return
		}

		render.JSON(w, r, Response{Grid: api.FromGrid(grid)})
	}
}

package check

import (
	"context"
	"net/http"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/api"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/model"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/service"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/request"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/pkg/response"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type BulkChecker interface {
	CheckBulk(ctx context.Context, in service.CheckBulkInput) (map[model.Weekday]map[model.TimeOfDay]*model.Booking, error)
}

// Request.Times maps weekday labels to times of day.
type Request struct {
	Date     string              `json:"date" validate:"required,datetime=2006-01-02"`
	Category string              `json:"category" validate:"required,category"`
	Times    map[string][]string `json:"times" validate:"required,min=1,dive,keys,weekday,endkeys,dive,timeofday"`
}

type Response struct {
	response.Response
	Bookings map[string]map[string]*api.BookingResponse `json:"bookings"`
}

func New(log *zap.Logger, checker BulkChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.check.New"

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

		in, labels, err := req.input()
		if err != nil {
			response.BadRequest(w, r, err.Error())
			return
		}

		result, err := checker.CheckBulk(r.Context(), in)
		if err != nil {
			if status := response.Render(w, r, err); status >= http.StatusInternalServerError {
				log.Error("Failed to check bookings", zap.Error(err))
			}
			return
		}

		render.JSON(w, r, Response{Bookings: labels.echo(result)})
	}
}

type cell struct {
	weekday model.Weekday
	time    model.TimeOfDay
}

// rawLabels remembers the strings the client sent so the reply is keyed
// the same way as the request.
type rawLabels map[cell][][2]string

func (req Request) input() (service.CheckBulkInput, rawLabels, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return service.CheckBulkInput{}, nil, err
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		return service.CheckBulkInput{}, nil, err
	}

	in := service.CheckBulkInput{
		Date:     date,
		Category: category,
		Times:    make(map[model.Weekday][]model.TimeOfDay, len(req.Times)),
	}
	labels := make(rawLabels)
	for label, times := range req.Times {
		weekday, err := model.ParseWeekday(label)
		if err != nil {
			return service.CheckBulkInput{}, nil, err
		}
		for _, raw := range times {
			t, err := model.ParseTimeOfDay(raw)
			if err != nil {
				return service.CheckBulkInput{}, nil, err
			}
			c := cell{weekday: weekday, time: t}
			if _, seen := labels[c]; !seen {
				in.Times[weekday] = append(in.Times[weekday], t)
			}
			labels[c] = append(labels[c], [2]string{label, raw})
		}
	}
	return in, labels, nil
}

func (l rawLabels) echo(result map[model.Weekday]map[model.TimeOfDay]*model.Booking) map[string]map[string]*api.BookingResponse {
	out := make(map[string]map[string]*api.BookingResponse, len(result))
	for c, keys := range l {
		b := result[c.weekday][c.time]
		for _, k := range keys {
			row, ok := out[k[0]]
			if !ok {
				row = make(map[string]*api.BookingResponse)
				out[k[0]] = row
			}
			row[k[1]] = api.FromBooking(b)
		}
	}
	return out
}

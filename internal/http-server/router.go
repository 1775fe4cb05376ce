package httpserver

import (
	"net/http"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/config"
	bookingCancel "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/cancel"
	bookingCheck "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/check"
	bookingCreate "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/create"
	bookingGet "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/get"
	bookingList "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/list"
	bookingReschedule "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/reschedule"
	bookingUpdate "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/bookings/update"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/settings/hours"
	slotBulk "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/slots/bulk"
	slotGrid "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/slots/grid"
	slotRemove "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/slots/remove"
	slotTimes "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/slots/times"
	slotUpsert "github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/slots/upsert"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/handlers/updates/stream"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/actor"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/http-server/middleware/mwlogger"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// Service is everything the HTTP boundary calls on the coordinator.
type Service interface {
	bookingCreate.BookingCreator
	bookingUpdate.BookingUpdater
	bookingCancel.BookingCanceller
	bookingGet.BookingGetter
	bookingList.PersonBookingsLister
	bookingCheck.BulkChecker
	bookingReschedule.Rescheduler
	slotGrid.GridQuerier
	slotBulk.AvailabilitySetter
	slotTimes.TimeCatalog
	slotUpsert.SlotUpserter
	slotRemove.SlotRemover
	hours.HoursProvider
}

func NewRouter(log *zap.Logger, svc Service, updates stream.Subscriber, cfg config.HTTPServer) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", actor.HeaderPersonID, actor.HeaderRole},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", metrics.Handler())
	router.Get("/updates", stream.New(log, updates, cfg.AllowedOrigins))

	router.Group(func(r chi.Router) {
		r.Use(actor.Require)
		if cfg.RequestsPerMin > 0 {
			r.Use(httprate.Limit(cfg.RequestsPerMin, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
		}

		// Bookings
		r.Post("/bookings", bookingCreate.New(log, svc))
		r.Post("/bookings/check", bookingCheck.New(log, svc))
		r.Get("/bookings/{id}", bookingGet.New(log, svc))
		r.Put("/bookings/{id}", bookingUpdate.New(log, svc))
		r.Post("/bookings/{id}/cancel", bookingCancel.New(log, svc))
		r.Post("/bookings/{id}/reschedule", bookingReschedule.New(log, svc))
		r.Get("/people/{personID}/bookings", bookingList.New(log, svc))

		// Slots
		r.Get("/slots", slotGrid.New(log, svc))
		r.Put("/slots", slotUpsert.New(log, svc))
		r.Put("/slots/bulk", slotBulk.New(log, svc))
		r.Get("/slots/times", slotTimes.List(log, svc))
		r.Post("/slots/times", slotTimes.Add(log, svc))
		r.Delete("/slots/times/{time}", slotTimes.Remove(log, svc))
		r.Delete("/slots/{weekday}/{time}/{category}", slotRemove.New(log, svc))

		// Settings
		r.Get("/settings/hours", hours.Get(svc))
		r.Put("/settings/hours", hours.Update(log, svc))
	})

	return router
}

// NewServer applies the configured timeouts. The update stream is long
// lived, so WriteTimeout stays unset and handlers rely on their own deadlines.
func NewServer(handler http.Handler, cfg config.HTTPServer) *http.Server {
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Timeout,
		ReadTimeout:       cfg.Timeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

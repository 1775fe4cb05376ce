// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Booking operations
	BookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbearia_booking_operations_total",
			Help: "Successful booking and slot mutations by operation",
		},
		[]string{"operation"},
	)

	PolicyRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbearia_rejections_total",
			Help: "Rejected requests by reason code",
		},
		[]string{"reason"},
	)

	// Reconciler
	ReconcilerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbearia_reconciler_runs_total",
			Help: "Reconciler job runs by job and result",
		},
		[]string{"job", "result"},
	)

	ReconcilerCorrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbearia_reconciler_corrections_total",
			Help: "Rows changed by reconciler jobs",
		},
		[]string{"job"},
	)

	// Live updates
	BroadcastSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "barbearia_broadcast_subscribers",
			Help: "Currently registered update subscribers",
		},
	)

	BroadcastEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barbearia_broadcast_events_total",
			Help: "Refresh events published",
		},
	)

	BroadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barbearia_broadcast_dropped_subscribers_total",
			Help: "Subscribers removed because a push failed",
		},
	)

	// HTTP
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barbearia_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Telegram
	TelegramNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barbearia_telegram_notifications_total",
			Help: "Telegram notifications by result",
		},
		[]string{"result"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

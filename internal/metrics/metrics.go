package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courts_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courts_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courts_reservations_total",
			Help: "Total number of reservations created",
		},
		[]string{"status"},
	)

	ReservationRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courts_reservation_rejections_total",
			Help: "Reservation writes rejected by the allocator",
		},
		[]string{"reason"},
	)

	ReservationCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courts_reservation_cancellations_total",
			Help: "Total number of reservation cancellations",
		},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courts_events_published_total",
			Help: "Reservation events handed to the broker",
		},
		[]string{"type", "result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordReservation(status string) {
	ReservationsTotal.WithLabelValues(status).Inc()
}

func RecordRejection(reason string) {
	ReservationRejectionsTotal.WithLabelValues(reason).Inc()
}

func RecordCancellation() {
	ReservationCancellationsTotal.Inc()
}

func RecordEvent(eventType, result string) {
	EventsPublishedTotal.WithLabelValues(eventType, result).Inc()
}

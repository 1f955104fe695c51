package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gym_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsAcceptedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_bookings_accepted_total",
			Help: "Total number of accepted bookings",
		},
		[]string{"service_type"},
	)

	BookingsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_bookings_rejected_total",
			Help: "Total number of rejected booking attempts",
		},
		[]string{"reason"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	BookingReschedulesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_booking_reschedules_total",
			Help: "Total number of booking reschedules",
		},
	)

	MembershipsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_memberships_created_total",
			Help: "Total number of memberships purchased",
		},
		[]string{"plan_type"},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_notifications_queued_total",
			Help: "Total number of notifications queued",
		},
		[]string{"type"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gym_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingAccepted(serviceType string) {
	BookingsAcceptedTotal.WithLabelValues(serviceType).Inc()
}

func RecordBookingRejected(reason string) {
	BookingsRejectedTotal.WithLabelValues(reason).Inc()
}

func RecordCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordReschedule() {
	BookingReschedulesTotal.Inc()
}

func RecordMembership(planType string) {
	MembershipsCreatedTotal.WithLabelValues(planType).Inc()
}

func RecordNotification(notifType string) {
	NotificationsQueuedTotal.WithLabelValues(notifType).Inc()
}

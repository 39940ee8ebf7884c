package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "renthub",
			Name:      "bookings_created_total",
			Help:      "Bookings created in waiting status.",
		},
	)

	bookingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renthub",
			Name:      "booking_decisions_total",
			Help:      "Owner decisions on waiting bookings.",
		},
		[]string{"decision"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renthub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "renthub",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by rate limiting.",
		},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renthub",
			Name:      "sheets_sync_tasks_total",
			Help:      "Sheets mirror tasks by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingsCreated, bookingDecisions, httpRequests, rateLimited, syncTasks)
	})
}

// IncBookingCreated counts a new waiting booking.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingDecision counts an approval or rejection.
func IncBookingDecision(decision string) {
	bookingDecisions.WithLabelValues(decision).Inc()
}

// IncHTTP counts a handled HTTP request.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncRateLimited counts a throttled request.
func IncRateLimited() {
	rateLimited.Inc()
}

// IncSyncTask counts a processed sheets sync task by result.
func IncSyncTask(result string) {
	syncTasks.WithLabelValues(result).Inc()
}

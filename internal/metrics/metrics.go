package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "bookings_created_total",
			Help:      "Bookings created, by initial status.",
		},
		[]string{"status"},
	)

	bookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "booking_conflicts_total",
			Help:      "Rejected booking attempts, by conflict kind.",
		},
		[]string{"kind"},
	)

	availabilityOverrides = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "courtline",
			Name:      "availability_overrides_total",
			Help:      "Admin overrides of the availability containment check.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingConflicts, availabilityOverrides)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a successful booking creation.
func IncBookingCreated(status string) {
	bookingsCreated.WithLabelValues(status).Inc()
}

// IncBookingConflict counts a rejected booking by conflict kind
// (coach, court, availability).
func IncBookingConflict(kind string) {
	bookingConflicts.WithLabelValues(kind).Inc()
}

// IncAvailabilityOverride counts an audited admin override.
func IncAvailabilityOverride() {
	availabilityOverrides.Inc()
}

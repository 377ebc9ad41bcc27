package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts bookings accepted by the ledger.
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Name:      "bookings_created_total",
			Help:      "The total number of created bookings",
		},
		[]string{"priority"},
	)

	// BookingsRejected counts booking attempts refused for capacity or availability.
	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Name:      "bookings_rejected_total",
			Help:      "The total number of booking attempts rejected by the ledger",
		},
		[]string{"reason"},
	)

	BookingNumberCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "travel",
			Name:      "booking_number_collisions_total",
			Help:      "The total number of booking number collisions that were retried",
		},
	)

	// StatusTransitions counts booking status changes by cause.
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Name:      "booking_status_transitions_total",
			Help:      "The total number of booking status transitions",
		},
		[]string{"from", "to", "cause"},
	)

	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "travel",
			Name:      "payments_recorded_total",
			Help:      "The total number of recorded payments",
		},
		[]string{"method", "status"},
	)

	PaymentsRefunded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "travel",
			Name:      "payments_refunded_total",
			Help:      "The total number of refunded payments",
		},
	)

	// HTTPRequests counts served requests by route pattern.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "http",
			Name:      "requests_total",
			Help:      "The total number of served HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration is a summary with quantiles 0.5, 0.9 and 0.99.
	HTTPRequestDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  "http",
			Name:       "request_duration_seconds",
			Help:       "The time spent serving HTTP requests",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "route"},
	)
)

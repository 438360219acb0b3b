package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_confirmed_total",
		Help: "Bookings that reached confirmed status.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_cancelled_total",
		Help: "Bookings cancelled by their owner.",
	})

	PaymentsDeclined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_declined_total",
		Help: "Payment authorizations declined by the gateway.",
	})

	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_seat_conflicts_total",
		Help: "Booking attempts rejected because seats ran out under lock.",
	})

	BookingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "booking_create_duration_seconds",
		Help:    "Wall time of the booking creation transaction.",
		Buckets: prometheus.DefBuckets,
	})
)

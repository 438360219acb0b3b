package domain

import (
	"time"

	"github.com/google/uuid"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusBoarding  FlightStatus = "boarding"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
)

type Flight struct {
	ID               uuid.UUID
	FlightNumber     string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	AircraftType     string
	TotalSeats       int
	AvailableSeats   int
	BasePriceCents   int64
	Currency         string
	Status           FlightStatus
	Gate             string
	Terminal         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Bookable reports whether the flight can still take n more seats.
func (f *Flight) Bookable(n int) bool {
	return f.Status == FlightStatusScheduled && f.AvailableSeats >= n
}

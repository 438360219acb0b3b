package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Reference        string
	FlightID         uuid.UUID
	ReturnFlightID   *uuid.UUID
	PassengerCount   int
	TotalAmountCents int64
	Currency         string
	Status           BookingStatus
	ContactEmail     string
	ContactPhone     string
	ConfirmationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Passengers []Passenger
}

// Cancellable reports whether the booking may still be cancelled by its owner.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

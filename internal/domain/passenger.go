package domain

import (
	"time"

	"github.com/google/uuid"
)

type Passenger struct {
	ID             uuid.UUID
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	DateOfBirth    time.Time
	Gender         string // M, F or OTHER
	Nationality    string // ISO 3166-1 alpha-2
	PassportNumber string
	PassportExpiry time.Time
	SeatPreference string
	MealPreference string
	CreatedAt      time.Time
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Payment struct {
	ID                uuid.UUID
	BookingID         uuid.UUID
	Method            string
	AmountCents       int64
	Currency          string
	Status            PaymentStatus
	TransactionID     string
	RefundAmountCents int64
	ProcessedAt       *time.Time
	RefundedAt        *time.Time
	CreatedAt         time.Time
}

// RefundCentsAfterFee is the amount returned to the customer after the 10%
// cancellation fee, computed in integer minor units to avoid rounding drift.
func RefundCentsAfterFee(amountCents int64) int64 {
	return amountCents - amountCents/10
}

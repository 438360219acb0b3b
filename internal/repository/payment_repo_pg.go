package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kwairways/backend/internal/domain"
)

type PaymentRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, p *domain.Payment) error
	// MarkRefunded flips completed payments of a booking to refunded, records
	// the refund amount after the cancellation fee and returns the affected
	// rows so the caller can forward the refund to the gateway.
	MarkRefunded(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) ([]domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error)
}

const paymentColumns = `id, booking_id, method, amount_cents, currency, status, transaction_id, refund_amount_cents, processed_at, refunded_at, created_at`

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Insert(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	return tx.QueryRow(ctx, `INSERT INTO payments (id, booking_id, method, amount_cents, currency, status, transaction_id, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING processed_at, created_at`,
		p.ID, p.BookingID, p.Method, p.AmountCents, p.Currency, p.Status, p.TransactionID).
		Scan(&p.ProcessedAt, &p.CreatedAt)
}

func (r *PGPaymentRepository) MarkRefunded(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID) ([]domain.Payment, error) {
	rows, err := tx.Query(ctx, `UPDATE payments
		SET status=$2, refunded_at=now(), refund_amount_cents = amount_cents - amount_cents / 10
		WHERE booking_id=$1 AND status=$3
		RETURNING `+paymentColumns,
		bookingID, domain.PaymentStatusRefunded, domain.PaymentStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPayments(rows)
}

func scanPayments(rows pgx.Rows) ([]domain.Payment, error) {
	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Method, &p.AmountCents, &p.Currency, &p.Status, &p.TransactionID, &p.RefundAmountCents, &p.ProcessedAt, &p.RefundedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)

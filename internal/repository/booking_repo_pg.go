package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kwairways/backend/internal/domain"
)

type BookingRepository interface {
	// Insert writes the booking row inside the caller's transaction. A
	// duplicate reference surfaces as a unique-constraint error; callers may
	// regenerate the reference and retry (see IsUniqueViolation).
	Insert(ctx context.Context, tx pgx.Tx, b *domain.Booking) error
	// InsertPassenger writes the passenger row and its booking link together.
	InsertPassenger(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, p *domain.Passenger) error
	Confirm(ctx context.Context, tx pgx.Tx, id uuid.UUID, confirmationCode string) error
	MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	// LockForUpdate reads a booking owned by userID with FOR UPDATE so the
	// cancel path sees a stable status.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*domain.Booking, error)

	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error)
	// MarkCompletedDeparted flips confirmed bookings on already-departed
	// flights to completed and reports how many rows changed.
	MarkCompletedDeparted(ctx context.Context, now time.Time) (int64, error)
}

const bookingColumns = `id, user_id, reference, flight_id, return_flight_id, passenger_count, total_amount_cents, currency, status, contact_email, contact_phone, confirmation_code, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Insert(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	return tx.QueryRow(ctx, `INSERT INTO bookings (id, user_id, reference, flight_id, return_flight_id, passenger_count, total_amount_cents, currency, status, contact_email, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.Reference, b.FlightID, b.ReturnFlightID, b.PassengerCount, b.TotalAmountCents, b.Currency, b.Status, b.ContactEmail, b.ContactPhone).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) InsertPassenger(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, p *domain.Passenger) error {
	if err := tx.QueryRow(ctx, `INSERT INTO passengers (id, first_name, last_name, email, phone, date_of_birth, gender, nationality, passport_number, passport_expiry, seat_preference, meal_preference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.Gender, p.Nationality, p.PassportNumber, p.PassportExpiry, p.SeatPreference, p.MealPreference).
		Scan(&p.CreatedAt); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `INSERT INTO booking_passengers (booking_id, passenger_id) VALUES ($1, $2)`, bookingID, p.ID)
	return err
}

func (r *PGBookingRepository) Confirm(ctx context.Context, tx pgx.Tx, id uuid.UUID, confirmationCode string) error {
	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$2, confirmation_code=$3, updated_at=now() WHERE id=$1`, id, domain.BookingStatusConfirmed, confirmationCode)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1`, id, domain.BookingStatusCancelled)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *PGBookingRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, id, userID uuid.UUID) (*domain.Booking, error) {
	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 AND user_id=$2 FOR UPDATE`, id, userID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 AND user_id=$2`, id, userID)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT p.id, p.first_name, p.last_name, p.email, p.phone, p.date_of_birth, p.gender, p.nationality, p.passport_number, p.passport_expiry, p.seat_preference, p.meal_preference, p.created_at
		FROM passengers p
		JOIN booking_passengers bp ON bp.passenger_id = p.id
		WHERE bp.booking_id = $1
		ORDER BY p.created_at`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.DateOfBirth, &p.Gender, &p.Nationality, &p.PassportNumber, &p.PassportExpiry, &p.SeatPreference, &p.MealPreference, &p.CreatedAt); err != nil {
			return nil, err
		}
		b.Passengers = append(b.Passengers, p)
	}
	return b, rows.Err()
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, int, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *PGBookingRepository) MarkCompletedDeparted(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings b SET status=$1, updated_at=now()
		FROM flights f
		WHERE b.flight_id = f.id AND b.status=$2 AND f.departure_time < $3`,
		domain.BookingStatusCompleted, domain.BookingStatusConfirmed, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var confirmation *string
	if err := row.Scan(&b.ID, &b.UserID, &b.Reference, &b.FlightID, &b.ReturnFlightID, &b.PassengerCount, &b.TotalAmountCents, &b.Currency, &b.Status, &b.ContactEmail, &b.ContactPhone, &confirmation, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if confirmation != nil {
		b.ConfirmationCode = *confirmation
	}
	return &b, nil
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ BookingRepository = (*PGBookingRepository)(nil)

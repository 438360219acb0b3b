package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kwairways/backend/internal/domain"
)

type SearchParams struct {
	Departure     string
	Arrival       string
	DepartureDate time.Time
	Passengers    int
	SortBy        string // price, departure_time, arrival_time
	Order         string // asc, desc
	Limit         int
	Offset        int
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, params SearchParams) ([]domain.Flight, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error)

	// LockForUpdate reads the flight row with SELECT ... FOR UPDATE; the lock
	// is held until the enclosing transaction commits or rolls back.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Flight, error)
	// ReserveSeats decrements available_seats by n, failing with
	// domain.ErrSeatsUnavailable when fewer than n seats remain.
	ReserveSeats(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error
	// ReleaseSeats increments available_seats by n, clamped to total_seats so
	// a double release can never overshoot the cabin.
	ReleaseSeats(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error
}

const flightColumns = `id, flight_number, departure_airport, arrival_airport, departure_time, arrival_time, aircraft_type, total_seats, available_seats, base_price_cents, currency, status, gate, terminal, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) Search(ctx context.Context, params SearchParams) ([]domain.Flight, error) {
	sortMapping := map[string]string{
		"price":          "base_price_cents",
		"departure_time": "departure_time",
		"arrival_time":   "arrival_time",
	}
	sortCol, ok := sortMapping[params.SortBy]
	if !ok {
		sortCol = "base_price_cents"
	}
	order := "ASC"
	if params.Order == "desc" {
		order = "DESC"
	}

	sql := `SELECT ` + flightColumns + ` FROM flights
		WHERE departure_airport = $1
		  AND arrival_airport = $2
		  AND departure_time >= $3 AND departure_time < $3 + interval '1 day'
		  AND available_seats >= $4
		  AND status = 'scheduled'
		ORDER BY ` + sortCol + ` ` + order + `
		LIMIT $5 OFFSET $6`

	day := params.DepartureDate.Truncate(24 * time.Hour)
	rows, err := r.db.Query(ctx, sql, params.Departure, params.Arrival, day, params.Passengers, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Flight, error) {
	row := tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) ReserveSeats(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error {
	cmd, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`, id, n)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSeatsUnavailable
	}
	return nil
}

func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, tx pgx.Tx, id uuid.UUID, n int) error {
	cmd, err := tx.Exec(ctx, `UPDATE flights SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = now() WHERE id=$1`, id, n)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.DepartureAirport, &f.ArrivalAirport, &f.DepartureTime, &f.ArrivalTime, &f.AircraftType, &f.TotalSeats, &f.AvailableSeats, &f.BasePriceCents, &f.Currency, &f.Status, &f.Gate, &f.Terminal, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFlights(rows pgx.Rows) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

var _ FlightRepository = (*PGFlightRepository)(nil)

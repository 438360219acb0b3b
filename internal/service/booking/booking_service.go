package booking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kwairways/backend/internal/domain"
	"github.com/kwairways/backend/internal/kafka"
	"github.com/kwairways/backend/internal/metrics"
	"github.com/kwairways/backend/internal/payment"
	"github.com/kwairways/backend/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) error
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Booking, int, error)
	CompleteDepartedBookings(ctx context.Context) (int64, error)
}

// TxManager runs a function inside one database transaction; every write the
// function makes commits together or not at all.
type TxManager interface {
	WithTx(ctx context.Context, fn func(pgx.Tx) error) error
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	tx                 TxManager
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	payments           repository.PaymentRepository
	gateway            payment.Gateway
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	paymentTimeout     time.Duration
	referenceRetries   int
	validate           *validator.Validate
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithPaymentTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.paymentTimeout = d
	}
}

func WithReferenceRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.referenceRetries = n
	}
}

func NewBookingService(
	tx TxManager,
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	payments repository.PaymentRepository,
	gateway payment.Gateway,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:               tx,
		bookings:         bookings,
		flights:          flights,
		payments:         payments,
		gateway:          gateway,
		cache:            cache,
		producer:         producer,
		bookingTopic:     bookingTopic,
		paymentTimeout:   15 * time.Second,
		referenceRetries: 3,
		validate:         newValidator(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking runs the whole reservation as one transaction: seat re-check
// under row locks, pending booking plus passengers, synchronous payment
// authorization, seat decrement and the flip to confirmed. The caller sees a
// fully confirmed booking or an error with no trace left in storage.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	passengers, err := s.validateCreate(input)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(metrics.BookingDuration)
	defer timer.ObserveDuration()

	n := len(passengers)
	booking := &domain.Booking{
		ID:             uuid.New(),
		UserID:         input.UserID,
		FlightID:       input.FlightID,
		ReturnFlightID: input.ReturnFlightID,
		PassengerCount: n,
		Status:         domain.BookingStatusPending,
		ContactEmail:   input.Contact.Email,
		ContactPhone:   input.Contact.Phone,
		Passengers:     passengers,
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		outbound, returnFlight, err := s.lockFlights(ctx, tx, input.FlightID, input.ReturnFlightID)
		if err != nil {
			return err
		}

		// The search result that led here may be stale; the only check that
		// counts is this one, made while the rows are locked.
		for _, f := range []*domain.Flight{outbound, returnFlight} {
			if f == nil {
				continue
			}
			if f.Status != domain.FlightStatusScheduled {
				return domain.ErrFlightNotBookable
			}
			if f.AvailableSeats < n {
				return domain.ErrSeatsUnavailable
			}
		}

		total := outbound.BasePriceCents * int64(n)
		if returnFlight != nil {
			total += returnFlight.BasePriceCents * int64(n)
		}
		booking.TotalAmountCents = total
		booking.Currency = outbound.Currency

		if err := s.insertWithReference(ctx, tx, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		for i := range booking.Passengers {
			if err := s.bookings.InsertPassenger(ctx, tx, booking.ID, &booking.Passengers[i]); err != nil {
				return fmt.Errorf("insert passenger: %w", err)
			}
		}

		payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
		defer cancel()
		result, err := s.gateway.Authorize(payCtx, payment.AuthorizeRequest{
			AmountCents: total,
			Currency:    booking.Currency,
			Reference:   booking.Reference,
			Card: payment.Card{
				Number:         input.Payment.CardNumber,
				ExpiryMonth:    input.Payment.ExpiryMonth,
				ExpiryYear:     input.Payment.ExpiryYear,
				CVV:            input.Payment.CVV,
				CardholderName: input.Payment.CardholderName,
			},
		})
		if err != nil {
			return fmt.Errorf("authorize payment: %w", err)
		}
		if !result.Approved {
			return &domain.PaymentDeclinedError{Reason: result.Reason}
		}

		if err := s.payments.Insert(ctx, tx, &domain.Payment{
			ID:            uuid.New(),
			BookingID:     booking.ID,
			Method:        "credit_card",
			AmountCents:   total,
			Currency:      booking.Currency,
			Status:        domain.PaymentStatusCompleted,
			TransactionID: result.TransactionID,
		}); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if err := s.flights.ReserveSeats(ctx, tx, outbound.ID, n); err != nil {
			return err
		}
		if returnFlight != nil {
			if err := s.flights.ReserveSeats(ctx, tx, returnFlight.ID, n); err != nil {
				return err
			}
		}

		booking.ConfirmationCode = newConfirmationCode()
		if err := s.bookings.Confirm(ctx, tx, booking.ID, booking.ConfirmationCode); err != nil {
			return fmt.Errorf("confirm booking: %w", err)
		}
		booking.Status = domain.BookingStatusConfirmed
		return nil
	})
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	metrics.BookingsConfirmed.Inc()
	s.afterInventoryChange(ctx)
	s.publish(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

// CancelBooking reverses a pending or confirmed booking in one transaction:
// seats restored under the same row locks the create path takes, payments
// marked refunded, booking flipped to cancelled. The gateway refund itself is
// forwarded after commit and is fire-and-forget.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) error {
	var booking *domain.Booking
	var refunded []domain.Payment

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.LockForUpdate(ctx, tx, bookingID, userID)
		if err != nil {
			return err
		}
		if !b.Cancellable() {
			return domain.ErrNotCancellable
		}

		outbound, returnFlight, err := s.lockFlights(ctx, tx, b.FlightID, b.ReturnFlightID)
		if err != nil {
			return err
		}
		if err := s.flights.ReleaseSeats(ctx, tx, outbound.ID, b.PassengerCount); err != nil {
			return err
		}
		if returnFlight != nil {
			if err := s.flights.ReleaseSeats(ctx, tx, returnFlight.ID, b.PassengerCount); err != nil {
				return err
			}
		}

		refunded, err = s.payments.MarkRefunded(ctx, tx, b.ID)
		if err != nil {
			return fmt.Errorf("mark payments refunded: %w", err)
		}
		if err := s.bookings.MarkCancelled(ctx, tx, b.ID); err != nil {
			return err
		}

		b.Status = domain.BookingStatusCancelled
		booking = b
		return nil
	})
	if err != nil {
		return err
	}

	metrics.BookingsCancelled.Inc()
	s.forwardRefunds(refunded)
	s.afterInventoryChange(ctx)
	s.publish(ctx, kafka.EventBookingCancelled, booking)
	return nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID, userID)
}

func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Booking, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.bookings.ListByUser(ctx, userID, limit, (page-1)*limit)
}

// CompleteDepartedBookings is the worker sweep that settles confirmed
// bookings once their flight has departed.
func (s *BookingService) CompleteDepartedBookings(ctx context.Context) (int64, error) {
	return s.bookings.MarkCompletedDeparted(ctx, time.Now())
}

// lockFlights acquires FOR UPDATE locks on the involved flight rows. When a
// return flight is present the two rows are locked in ascending UUID order so
// concurrent round-trip bookings cannot deadlock each other.
func (s *BookingService) lockFlights(ctx context.Context, tx pgx.Tx, outboundID uuid.UUID, returnID *uuid.UUID) (*domain.Flight, *domain.Flight, error) {
	if returnID == nil {
		outbound, err := s.flights.LockForUpdate(ctx, tx, outboundID)
		if err != nil {
			return nil, nil, err
		}
		return outbound, nil, nil
	}

	first, second := outboundID, *returnID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}

	f1, err := s.flights.LockForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, err
	}
	f2, err := s.flights.LockForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, err
	}

	if f1.ID == outboundID {
		return f1, f2, nil
	}
	return f2, f1, nil
}

// insertWithReference writes the pending booking row, regenerating the
// reference on a unique-constraint collision. Each attempt runs inside a
// savepoint so a failed insert does not poison the outer transaction.
func (s *BookingService) insertWithReference(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	retries := s.referenceRetries
	if retries < 1 {
		retries = 1
	}

	var err error
	for i := 0; i < retries; i++ {
		b.Reference = newReference()

		sp, spErr := tx.Begin(ctx)
		if spErr != nil {
			return spErr
		}
		if err = s.bookings.Insert(ctx, sp, b); err != nil {
			_ = sp.Rollback(ctx)
			if repository.IsUniqueViolation(err) {
				continue
			}
			return err
		}
		return sp.Commit(ctx)
	}
	return fmt.Errorf("booking reference collisions exhausted retries: %w", err)
}

func (s *BookingService) countFailure(err error) {
	var declined *domain.PaymentDeclinedError
	switch {
	case errors.Is(err, domain.ErrSeatsUnavailable):
		metrics.SeatConflicts.Inc()
	case errors.As(err, &declined):
		metrics.PaymentsDeclined.Inc()
	}
}

// forwardRefunds pushes refunds to the gateway outside the transaction. The
// local ledger already shows the payments as refunded; a gateway hiccup here
// is an operator concern, not a caller error.
func (s *BookingService) forwardRefunds(payments []domain.Payment) {
	if s.gateway == nil || len(payments) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, p := range payments {
			if err := s.gateway.Refund(ctx, p.TransactionID, p.RefundAmountCents); err != nil {
				slog.Warn("gateway refund failed", "transaction_id", p.TransactionID, "error", err)
			}
		}
	}()
}

func (s *BookingService) afterInventoryChange(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		slog.Warn("invalidate flights cache", "error", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" || b == nil {
		return
	}

	event := kafka.BookingEvent{
		Type:           eventType,
		BookingID:      b.ID.String(),
		Reference:      b.Reference,
		UserID:         b.UserID.String(),
		FlightID:       b.FlightID.String(),
		PassengerCount: b.PassengerCount,
		AmountCents:    b.TotalAmountCents,
		Currency:       b.Currency,
		Status:         string(b.Status),
		ContactEmail:   b.ContactEmail,
		OccurredAt:     time.Now().UTC(),
	}
	if b.ReturnFlightID != nil {
		event.ReturnFlightID = b.ReturnFlightID.String()
	}

	if err := s.producer.Publish(ctx, s.bookingTopic, b.Reference, event); err != nil {
		slog.Warn("publish booking event", "type", eventType, "reference", b.Reference, "error", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, b.Reference, event); err != nil {
			slog.Warn("publish notification event", "type", eventType, "reference", b.Reference, "error", err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)

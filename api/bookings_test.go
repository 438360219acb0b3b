package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kwairways/backend/internal/domain"
	"github.com/kwairways/backend/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) error {
	args := m.Called(ctx, bookingID, userID)
	return args.Error(0)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Booking, int, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]domain.Booking), args.Int(1), args.Error(2)
}

func (m *MockBookingUseCase) CompleteDepartedBookings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	userID := uuid.New()
	flightID := uuid.New()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]any{"flight_id": flightID})
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(userIDHeader, userID.String())

	created := &domain.Booking{
		ID:               uuid.New(),
		UserID:           userID,
		Reference:        "KW12345678ABCD",
		FlightID:         flightID,
		PassengerCount:   2,
		TotalAmountCents: 900000,
		Currency:         "TWD",
		Status:           domain.BookingStatusConfirmed,
		ConfirmationCode: "X7K2P9",
	}

	mockService.On("CreateBooking", c.Request.Context(), mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.UserID == userID && in.FlightID == flightID
	})).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "KW12345678ABCD", response.Reference)
	assert.Equal(t, string(domain.BookingStatusConfirmed), response.Status)
	assert.Equal(t, "X7K2P9", response.ConfirmationCode)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_unauthenticated(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader([]byte(`{}`)))

	handler.create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_create_validationError(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(userIDHeader, uuid.NewString())

	verr := &domain.ValidationError{Fields: []domain.FieldError{
		{Field: "passengers", Message: "is required"},
	}}
	mockService.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, verr).Once()

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "passengers")
}

func TestBookingHandler_create_seatsUnavailable(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(userIDHeader, uuid.NewString())

	mockService.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, domain.ErrSeatsUnavailable).Once()

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SEATS_UNAVAILABLE")
}

func TestBookingHandler_create_paymentDeclined(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(userIDHeader, uuid.NewString())

	mockService.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, &domain.PaymentDeclinedError{Reason: "card declined"}).Once()

	handler.create(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "PAYMENT_DECLINED")
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	userID := uuid.New()
	bookingID := uuid.New()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/bookings/"+bookingID.String()+"/cancel", nil)
	c.Request.Header.Set(userIDHeader, userID.String())
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	mockService.On("CancelBooking", c.Request.Context(), bookingID, userID).Return(nil).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_notCancellable(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	userID := uuid.New()
	bookingID := uuid.New()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/bookings/"+bookingID.String()+"/cancel", nil)
	c.Request.Header.Set(userIDHeader, userID.String())
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	mockService.On("CancelBooking", mock.Anything, bookingID, userID).
		Return(domain.ErrNotCancellable).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_NOT_CANCELLABLE")
}

func TestBookingHandler_get_notFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	userID := uuid.New()
	bookingID := uuid.New()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings/"+bookingID.String(), nil)
	c.Request.Header.Set(userIDHeader, userID.String())
	c.Params = gin.Params{{Key: "id", Value: bookingID.String()}}

	mockService.On("GetBooking", mock.Anything, bookingID, userID).
		Return(nil, domain.ErrBookingNotFound).Once()

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "BOOKING_NOT_FOUND")
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	userID := uuid.New()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings?page=2&limit=5", nil)
	c.Request.Header.Set(userIDHeader, userID.String())

	mockService.On("ListBookings", c.Request.Context(), userID, 2, 5).
		Return([]domain.Booking{{ID: uuid.New(), UserID: userID, Reference: "KW00000001AAAA"}}, 11, nil).Once()

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "KW00000001AAAA")
	assert.Contains(t, w.Body.String(), `"total":11`)
	mockService.AssertExpectations(t)
}

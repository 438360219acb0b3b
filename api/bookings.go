package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kwairways/backend/internal/domain"
	"github.com/kwairways/backend/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/cancel", h.cancel)
}

type passengerResponse struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Gender         string `json:"gender"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passport_number"`
	SeatPreference string `json:"seat_preference"`
	MealPreference string `json:"meal_preference"`
}

type bookingResponse struct {
	ID               string              `json:"id"`
	Reference        string              `json:"reference"`
	Status           string              `json:"status"`
	FlightID         string              `json:"flight_id"`
	ReturnFlightID   string              `json:"return_flight_id,omitempty"`
	PassengerCount   int                 `json:"passenger_count"`
	TotalAmountCents int64               `json:"total_amount_cents"`
	Currency         string              `json:"currency"`
	ContactEmail     string              `json:"contact_email"`
	ContactPhone     string              `json:"contact_phone"`
	ConfirmationCode string              `json:"confirmation_code,omitempty"`
	CreatedAt        string              `json:"created_at"`
	Passengers       []passengerResponse `json:"passengers,omitempty"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:               b.ID.String(),
		Reference:        b.Reference,
		Status:           string(b.Status),
		FlightID:         b.FlightID.String(),
		PassengerCount:   b.PassengerCount,
		TotalAmountCents: b.TotalAmountCents,
		Currency:         b.Currency,
		ContactEmail:     b.ContactEmail,
		ContactPhone:     b.ContactPhone,
		ConfirmationCode: b.ConfirmationCode,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
	if b.ReturnFlightID != nil {
		resp.ReturnFlightID = b.ReturnFlightID.String()
	}
	for _, p := range b.Passengers {
		resp.Passengers = append(resp.Passengers, passengerResponse{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Gender:         p.Gender,
			Nationality:    p.Nationality,
			PassportNumber: p.PassportNumber,
			SeatPreference: p.SeatPreference,
			MealPreference: p.MealPreference,
		})
	}
	return resp
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "MALFORMED_BODY"})
		return
	}
	input.UserID = userID

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) list(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}

	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 10)

	bookings, total, err := h.service.ListBookings(c.Request.Context(), userID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		items = append(items, toBookingResponse(&bookings[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id", "code": "INVALID_ID"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	userID, ok := userIDFrom(c)
	if !ok {
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id", "code": "INVALID_ID"})
		return
	}

	if err := h.service.CancelBooking(c.Request.Context(), bookingID, userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "booking cancelled, refund will be processed within 3-5 business days",
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

package api

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kwairways/backend/internal/domain"
	"github.com/kwairways/backend/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
}

type flightResponse struct {
	ID               string `json:"id"`
	FlightNumber     string `json:"flight_number"`
	DepartureAirport string `json:"departure_airport"`
	ArrivalAirport   string `json:"arrival_airport"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	AircraftType     string `json:"aircraft_type"`
	TotalSeats       int    `json:"total_seats"`
	AvailableSeats   int    `json:"available_seats"`
	BasePriceCents   int64  `json:"base_price_cents"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Gate             string `json:"gate,omitempty"`
	Terminal         string `json:"terminal,omitempty"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:               f.ID.String(),
		FlightNumber:     f.FlightNumber,
		DepartureAirport: f.DepartureAirport,
		ArrivalAirport:   f.ArrivalAirport,
		DepartureTime:    f.DepartureTime.Format(time.RFC3339),
		ArrivalTime:      f.ArrivalTime.Format(time.RFC3339),
		AircraftType:     f.AircraftType,
		TotalSeats:       f.TotalSeats,
		AvailableSeats:   f.AvailableSeats,
		BasePriceCents:   f.BasePriceCents,
		Currency:         f.Currency,
		Status:           string(f.Status),
		Gate:             f.Gate,
		Terminal:         f.Terminal,
	}
}

func (h *FlightHandler) list(c *gin.Context) {
	result, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]flightResponse, 0, len(result))
	for i := range result {
		items = append(items, toFlightResponse(&result[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

func (h *FlightHandler) search(c *gin.Context) {
	departure := strings.ToUpper(c.Query("departure"))
	arrival := strings.ToUpper(c.Query("arrival"))
	if !iataPattern.MatchString(departure) || !iataPattern.MatchString(arrival) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "departure and arrival must be 3-letter IATA codes",
			"code":  "INVALID_AIRPORT_CODE",
		})
		return
	}

	departureDate, err := time.Parse("2006-01-02", c.Query("departure_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "departure_date must be a date in YYYY-MM-DD format",
			"code":  "INVALID_DEPARTURE_DATE",
		})
		return
	}

	result, err := h.service.Search(c.Request.Context(), flights.SearchInput{
		Departure:     departure,
		Arrival:       arrival,
		DepartureDate: departureDate,
		Passengers:    intQuery(c, "passengers", 1),
		SortBy:        c.DefaultQuery("sort", "price"),
		Order:         c.DefaultQuery("order", "asc"),
		Page:          intQuery(c, "page", 1),
		Limit:         intQuery(c, "limit", 20),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]flightResponse, 0, len(result))
	for i := range result {
		items = append(items, toFlightResponse(&result[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight id", "code": "INVALID_ID"})
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight))
}

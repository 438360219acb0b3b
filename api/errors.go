package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kwairways/backend/internal/domain"
)

// writeError maps a service error onto the HTTP surface. Anything not in the
// domain taxonomy is a storage or transaction fault and stays opaque.
func writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	var declined *domain.PaymentDeclinedError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "booking validation failed",
			"code":    "VALIDATION_ERROR",
			"details": verr.Fields,
		})
	case errors.As(err, &declined):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": declined.Reason,
			"code":  "PAYMENT_DECLINED",
		})
	case errors.Is(err, domain.ErrSeatsUnavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "not enough available seats",
			"code":  "SEATS_UNAVAILABLE",
		})
	case errors.Is(err, domain.ErrFlightNotBookable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "flight is not open for booking",
			"code":  "FLIGHT_NOT_AVAILABLE",
		})
	case errors.Is(err, domain.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "booking cannot be cancelled",
			"code":  "BOOKING_NOT_CANCELLABLE",
		})
	case errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "booking not found",
			"code":  "BOOKING_NOT_FOUND",
		})
	case errors.Is(err, domain.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "flight not found",
			"code":  "FLIGHT_NOT_FOUND",
		})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal error",
			"code":  "INTERNAL_ERROR",
		})
	}
}

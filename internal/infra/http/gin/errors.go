package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/handlers/checkout"
	"staybook/internal/app/policies"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayment "staybook/internal/domain/payment"
	domainpricing "staybook/internal/domain/pricing"
	domainrange "staybook/internal/domain/shared/daterange"
)

// respondError maps the engine's categorical errors onto HTTP statuses. The
// reason stays structured so clients can branch without parsing messages.
func respondError(c *gin.Context, err error) {
	var insufficient *domainpayment.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      err.Error(),
			"reason":     "insufficient_balance",
			"instrument": string(insufficient.Instrument),
		})
		return
	}
	var notCancellable *domainbooking.NotCancellableError
	if errors.As(err, &notCancellable) {
		c.JSON(http.StatusConflict, gin.H{
			"error":  err.Error(),
			"reason": "not_cancellable",
			"status": string(notCancellable.Status),
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrListingUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": "unavailable"})
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainlistings.ErrListingMissing),
		errors.Is(err, policies.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "reason": "not_found"})
	case errors.Is(err, domainbooking.ErrMissingPolicy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "reason": "missing_policy"})
	case errors.Is(err, domainrange.ErrInvalidRange),
		errors.Is(err, domainpricing.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrInvalidPartySize),
		errors.Is(err, domainavailability.ErrInvalidCategory),
		errors.Is(err, domainpricing.ErrMissingRatePolicy):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "reason": "invalid_request"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

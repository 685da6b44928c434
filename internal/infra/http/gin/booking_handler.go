package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	BookingApp "staybook/internal/app/handlers/bookings"
	CancelApp "staybook/internal/app/handlers/cancel"
	CheckoutApp "staybook/internal/app/handlers/checkout"
	"staybook/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type checkoutRequest struct {
	AccountID      string    `json:"account_id"`
	ListingID      string    `json:"listing_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Adults         int       `json:"adults"`
	Category       string    `json:"category"`
	Residence      bool      `json:"residence"`
	UseTokens      bool      `json:"use_tokens"`
	UseCredits     bool      `json:"use_credits"`
	TicketOptionID string    `json:"ticket_option_id"`
	TicketQuantity int       `json:"ticket_quantity"`
	PolicyVersion  string    `json:"policy_version"`
}

func (h BookingHandler) Checkout(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CheckoutApp.CheckoutCommand{
		CommandID:       generateCommandID(),
		AccountID:       req.AccountID,
		ListingID:       req.ListingID,
		Start:           req.Start,
		End:             req.End,
		Adults:          req.Adults,
		Category:        req.Category,
		Residence:       req.Residence,
		UseTokens:       req.UseTokens,
		UseCredits:      req.UseCredits,
		TicketOptionID:  req.TicketOptionID,
		TicketQuantity:  req.TicketQuantity,
		PolicyVersion:   req.PolicyVersion,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[CheckoutApp.CheckoutCommand, *CheckoutApp.CheckoutResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := CancelApp.CancelBookingCommand{
		BookingID: c.Param("id"),
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[CancelApp.CancelBookingCommand, *CancelApp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[BookingApp.GetBookingQuery, BookingApp.BookingView](c.Request.Context(), h.Queries, BookingApp.GetBookingQuery{
		BookingID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListByAccount(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	result, err := queries.Ask[BookingApp.ListBookingsQuery, BookingApp.ListBookingsResult](c.Request.Context(), h.Queries, BookingApp.ListBookingsQuery{
		AccountID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}

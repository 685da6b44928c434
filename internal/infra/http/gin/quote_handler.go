package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	QuoteApp "staybook/internal/app/handlers/quote"
	"staybook/internal/app/queries"
)

type QuoteHandler struct {
	Queries queries.Bus
}

type priceStayRequest struct {
	ListingID      string    `json:"listing_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Adults         int       `json:"adults"`
	Residence      bool      `json:"residence"`
	TicketOptionID string    `json:"ticket_option_id"`
	TicketQuantity int       `json:"ticket_quantity"`
	PolicyVersion  string    `json:"policy_version"`
}

func (h QuoteHandler) Price(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req priceStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[QuoteApp.PriceStayQuery, QuoteApp.PriceStayResult](c.Request.Context(), h.Queries, QuoteApp.PriceStayQuery{
		ListingID:      req.ListingID,
		Start:          req.Start,
		End:            req.End,
		Adults:         req.Adults,
		Residence:      req.Residence,
		TicketOptionID: req.TicketOptionID,
		TicketQuantity: req.TicketQuantity,
		PolicyVersion:  req.PolicyVersion,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ QuoteHTTP = QuoteHandler{}

package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	AvailabilityApp "staybook/internal/app/handlers/availability"
	"staybook/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

type searchAvailabilityRequest struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	PartySize int       `json:"party_size"`
	Category  string    `json:"category"`
}

func (h AvailabilityHandler) Search(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req searchAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := queries.Ask[AvailabilityApp.ResolveQuery, AvailabilityApp.ResolveResult](c.Request.Context(), h.Queries, AvailabilityApp.ResolveQuery{
		Start:     req.Start,
		End:       req.End,
		PartySize: req.PartySize,
		Category:  req.Category,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}

package ginserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/handlers/checkout"
	domainbooking "staybook/internal/domain/booking"
	domainlistings "staybook/internal/domain/listings"
	domainpayment "staybook/internal/domain/payment"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name: "insufficient balance",
			err: &domainpayment.InsufficientBalanceError{
				Instrument: domainpayment.InstrumentToken,
				Required:   money.Must(80, money.Token),
				Available:  money.Must(10, money.Token),
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "insufficient_balance",
		},
		{
			name:       "not cancellable",
			err:        &domainbooking.NotCancellableError{Status: domainbooking.StatusCheckedIn},
			wantStatus: http.StatusConflict,
			wantReason: "not_cancellable",
		},
		{
			name:       "listing unavailable",
			err:        checkout.ErrListingUnavailable,
			wantStatus: http.StatusConflict,
			wantReason: "unavailable",
		},
		{
			name:       "booking not found",
			err:        domainbooking.ErrBookingNotFound,
			wantStatus: http.StatusNotFound,
			wantReason: "not_found",
		},
		{
			name:       "listing missing",
			err:        domainlistings.ErrListingMissing,
			wantStatus: http.StatusNotFound,
			wantReason: "not_found",
		},
		{
			name:       "missing policy",
			err:        domainbooking.ErrMissingPolicy,
			wantStatus: http.StatusConflict,
			wantReason: "missing_policy",
		},
		{
			name:       "invalid range",
			err:        domainrange.ErrInvalidRange,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalid_request",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["reason"] != tc.wantReason {
				t.Fatalf("reason = %v, want %s", body["reason"], tc.wantReason)
			}
		})
	}
}

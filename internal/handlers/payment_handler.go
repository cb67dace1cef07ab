package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"subliBack/internal/models"
	"subliBack/internal/services"
)

const maxWebhookBytes = 64 << 10

type PaymentHandler struct {
	Service *services.PaymentService
}

// CreateCheckout starts a Stripe Checkout session for a boost or extend
// purchase on the caller's own listing.
func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, _ := principalFromContext(r)

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.CreateCheckoutSession(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// HandleWebhook receives Stripe event deliveries. Stripe retries on
// non-2xx, so only signature failures are rejected; everything applied or
// deliberately skipped is acknowledged.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable payload")
		return
	}

	err = h.Service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"), time.Now())
	if err != nil {
		if errors.Is(err, models.ErrInvalidSignature) {
			writeError(w, http.StatusBadRequest, "invalid signature")
			return
		}
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

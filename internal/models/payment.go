package models

import (
	"time"
)

// Paid add-on operations applied to a listing on payment completion.
const (
	PaymentOpExtend = "extend"
	PaymentOpBoost  = "boost"
)

func IsValidPaymentOp(op string) bool {
	return op == PaymentOpExtend || op == PaymentOpBoost
}

type CheckoutRequest struct {
	ListingID int    `json:"listing_id"`
	Operation string `json:"operation"`
}

type CheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CompletedPayment is the normalized payload extracted from a verified
// provider webhook event.
type CompletedPayment struct {
	EventID   string    `json:"event_id"`
	ListingID int       `json:"listing_id"`
	Operation string    `json:"operation"`
	PaidAt    time.Time `json:"paid_at"`
}

package models

import (
	"time"
)

// Inquiry is a renter-to-lister message tied to a specific listing.
type Inquiry struct {
	ID        int       `json:"id"`
	ListingID int       `json:"listing_id"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`

	ListingTitle string `json:"listing_title,omitempty"`
}

package models

import (
	"time"
)

const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
)

// DefaultListingTTL is the publication window granted on creation and added
// by every paid extension.
const DefaultListingTTL = 14 * 24 * time.Hour

type Listing struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	City          string     `json:"city"`
	Neighborhood  *string    `json:"neighborhood,omitempty"`
	Price         float64    `json:"price"`
	AvailableFrom time.Time  `json:"available_from"`
	AvailableTo   *time.Time `json:"available_to,omitempty"`
	Description   string     `json:"description"`
	Phone         *string    `json:"phone,omitempty"`
	Images        []string   `json:"images"`
	UserID        int        `json:"user_id"`
	Status        string     `json:"status"`
	AdminNote     string     `json:"admin_note,omitempty"`
	IsBoosted     bool       `json:"is_boosted"`
	ExpiresAt     time.Time  `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// IsPubliclyVisible reports whether the listing shows up for anonymous
// browsing at the given moment. Visibility is expiry-gated, not boost-gated.
func (l Listing) IsPubliclyVisible(now time.Time) bool {
	return l.Status == ListingStatusApproved && l.ExpiresAt.After(now)
}

func IsValidListingStatus(status string) bool {
	switch status {
	case ListingStatusPending, ListingStatusApproved, ListingStatusRejected:
		return true
	}
	return false
}

type ListingFilterRequest struct {
	City      string  `json:"city"`
	PriceFrom float64 `json:"price_from"`
	PriceTo   float64 `json:"price_to"`
	Search    string  `json:"search"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// AdminListingFilter narrows the moderation queue. Zero values mean "all".
type AdminListingFilter struct {
	Status string `json:"status"`
	Search string `json:"search"`
}

// RejectCommand carries an admin rejection. Note is required; validation
// happens in the service before any state is touched.
type RejectCommand struct {
	ListingID int    `json:"listing_id"`
	Note      string `json:"note"`
}

// ListingUpdate is the owner-editable subset of a listing. Moderation and
// monetization fields are deliberately absent.
type ListingUpdate struct {
	Title         string     `json:"title"`
	City          string     `json:"city"`
	Neighborhood  *string    `json:"neighborhood,omitempty"`
	Price         float64    `json:"price"`
	AvailableFrom time.Time  `json:"available_from"`
	AvailableTo   *time.Time `json:"available_to,omitempty"`
	Description   string     `json:"description"`
	Phone         *string    `json:"phone,omitempty"`
	Images        []string   `json:"images"`
}

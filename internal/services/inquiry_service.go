package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"subliBack/internal/models"
)

// InquiryStore is the persistence surface for renter-to-lister messages.
type InquiryStore interface {
	CreateInquiry(ctx context.Context, inquiry models.Inquiry) (models.Inquiry, error)
	GetInquiriesByOwnerID(ctx context.Context, ownerID int) ([]models.Inquiry, error)
	GetAllInquiries(ctx context.Context) ([]models.Inquiry, error)
	DeleteInquiry(ctx context.Context, id int) error
}

type InquiryService struct {
	InquiryRepo InquiryStore
	ListingRepo ListingStore
	UserRepo    UserDirectory
	Notifier    Notifier
	ErrorLog    *log.Logger
}

// CreateInquiry accepts a message against an approved, unexpired listing and
// emails the owner. A listing hidden from the public cannot receive
// inquiries.
func (s *InquiryService) CreateInquiry(ctx context.Context, inquiry models.Inquiry, now time.Time) (models.Inquiry, error) {
	if strings.TrimSpace(inquiry.Name) == "" || strings.TrimSpace(inquiry.Email) == "" || strings.TrimSpace(inquiry.Message) == "" {
		return models.Inquiry{}, models.ErrValidation
	}

	listing, err := s.ListingRepo.GetListingByID(ctx, inquiry.ListingID)
	if err != nil {
		return models.Inquiry{}, err
	}
	if !listing.IsPubliclyVisible(now) {
		return models.Inquiry{}, models.ErrListingNotLive
	}

	inquiry.OwnerID = listing.UserID
	inquiry.CreatedAt = now

	created, err := s.InquiryRepo.CreateInquiry(ctx, inquiry)
	if err != nil {
		return models.Inquiry{}, err
	}
	created.ListingTitle = listing.Title

	s.notifyOwner(ctx, listing, created)
	return created, nil
}

// GetInquiriesForOwner returns only the inquiries addressed to the acting
// lister.
func (s *InquiryService) GetInquiriesForOwner(ctx context.Context, ownerID int) ([]models.Inquiry, error) {
	return s.InquiryRepo.GetInquiriesByOwnerID(ctx, ownerID)
}

func (s *InquiryService) GetAllInquiries(ctx context.Context) ([]models.Inquiry, error) {
	return s.InquiryRepo.GetAllInquiries(ctx)
}

func (s *InquiryService) DeleteInquiry(ctx context.Context, id int) error {
	return s.InquiryRepo.DeleteInquiry(ctx, id)
}

func (s *InquiryService) notifyOwner(ctx context.Context, listing models.Listing, inquiry models.Inquiry) {
	if s.Notifier == nil || s.UserRepo == nil {
		return
	}
	owner, err := s.UserRepo.GetUserByID(ctx, listing.UserID)
	if err != nil {
		if s.ErrorLog != nil {
			s.ErrorLog.Printf("inquiry %d: owner %d lookup failed: %v", inquiry.ID, listing.UserID, err)
		}
		return
	}
	body := fmt.Sprintf("New inquiry for your listing %q.\n\nFrom: %s <%s>\n\n%s", listing.Title, inquiry.Name, inquiry.Email, inquiry.Message)
	if err := s.Notifier.Send(ctx, owner.Email, "New inquiry for your listing", body); err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("inquiry %d: notification to %s failed: %v", inquiry.ID, owner.Email, err)
	}
}

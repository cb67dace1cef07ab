package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"subliBack/internal/models"
	"subliBack/internal/repositories"
)

// ListingStore is the persistence surface the lifecycle policy needs. The
// MySQL repository satisfies it; tests substitute an in-memory fake.
type ListingStore interface {
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	GetListingByID(ctx context.Context, id int) (models.Listing, error)
	GetPublicListings(ctx context.Context, filter models.ListingFilterRequest, now time.Time, limit, offset int) ([]models.Listing, int, error)
	GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error)
	GetAllListings(ctx context.Context, filter models.AdminListingFilter) ([]models.Listing, error)
	UpdateFields(ctx context.Context, id int, upd models.ListingUpdate, status, adminNote string) error
	UpdateModeration(ctx context.Context, id int, status, adminNote string) error
	DeleteListing(ctx context.Context, id int) error
	ExtendExpiry(ctx context.Context, id int, until time.Time) error
	SetBoosted(ctx context.Context, id int, boosted bool) error
	ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error)
}

// UserDirectory resolves owner ids to accounts for notification emails.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
}

// Notifier delivers a message to one recipient. Delivery failures never roll
// back the state transition that triggered them.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type ListingService struct {
	ListingRepo ListingStore
	UserRepo    UserDirectory
	Notifier    Notifier
	ErrorLog    *log.Logger
}

func (s *ListingService) CreateListing(ctx context.Context, listing models.Listing, now time.Time) (models.Listing, error) {
	if strings.TrimSpace(listing.Title) == "" || strings.TrimSpace(listing.City) == "" {
		return models.Listing{}, models.ErrValidation
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}

	listing.Status = models.ListingStatusPending
	listing.AdminNote = ""
	listing.IsBoosted = false
	listing.ExpiresAt = now.Add(models.DefaultListingTTL)
	listing.CreatedAt = now

	return s.ListingRepo.CreateListing(ctx, listing)
}

func (s *ListingService) GetPublicListings(ctx context.Context, filter models.ListingFilterRequest, now time.Time) (models.ListingListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	offset := (filter.Page - 1) * filter.Limit

	listings, total, err := s.ListingRepo.GetPublicListings(ctx, filter, now, filter.Limit, offset)
	if err != nil {
		return models.ListingListResponse{}, err
	}

	return models.ListingListResponse{
		Listings: listings,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// GetListingByID applies the visibility rule: everyone sees an approved,
// unexpired listing; only the owner and admins see anything else. Hidden
// listings read as not found rather than forbidden.
func (s *ListingService) GetListingByID(ctx context.Context, id, viewerID int, viewerRole string, now time.Time) (models.Listing, error) {
	listing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}

	if listing.IsPubliclyVisible(now) {
		return listing, nil
	}
	if viewerRole == models.RoleAdmin || viewerID == listing.UserID {
		return listing, nil
	}
	return models.Listing{}, repositories.ErrListingNotFound
}

func (s *ListingService) GetListingsByOwner(ctx context.Context, userID int) ([]models.Listing, error) {
	return s.ListingRepo.GetListingsByUserID(ctx, userID)
}

func (s *ListingService) GetAllListings(ctx context.Context, filter models.AdminListingFilter) ([]models.Listing, error) {
	if filter.Status != "" && !models.IsValidListingStatus(filter.Status) {
		return nil, models.ErrValidation
	}
	return s.ListingRepo.GetAllListings(ctx, filter)
}

// UpdateListing is the owner edit. Editing a rejected listing is the
// resubmit transition: status goes back to pending and the admin note is
// cleared in the same write. Owners can never touch status, boost or expiry
// directly.
func (s *ListingService) UpdateListing(ctx context.Context, actorID, id int, upd models.ListingUpdate) (models.Listing, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if existing.UserID != actorID {
		return models.Listing{}, models.ErrForbidden
	}
	if strings.TrimSpace(upd.Title) == "" || strings.TrimSpace(upd.City) == "" {
		return models.Listing{}, models.ErrValidation
	}
	if upd.Images == nil {
		upd.Images = []string{}
	}

	status := existing.Status
	adminNote := existing.AdminNote
	if existing.Status == models.ListingStatusRejected {
		status = models.ListingStatusPending
		adminNote = ""
	}

	if err := s.ListingRepo.UpdateFields(ctx, id, upd, status, adminNote); err != nil {
		return models.Listing{}, err
	}
	return s.ListingRepo.GetListingByID(ctx, id)
}

// AdminUpdateListing overrides listing fields without changing moderation
// state.
func (s *ListingService) AdminUpdateListing(ctx context.Context, id int, upd models.ListingUpdate) (models.Listing, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if strings.TrimSpace(upd.Title) == "" || strings.TrimSpace(upd.City) == "" {
		return models.Listing{}, models.ErrValidation
	}
	if upd.Images == nil {
		upd.Images = []string{}
	}

	if err := s.ListingRepo.UpdateFields(ctx, id, upd, existing.Status, existing.AdminNote); err != nil {
		return models.Listing{}, err
	}
	return s.ListingRepo.GetListingByID(ctx, id)
}

// Resubmit is the explicit owner transition out of rejected. It shares its
// effect with the edit-while-rejected path in UpdateListing.
func (s *ListingService) Resubmit(ctx context.Context, actorID, id int) (models.Listing, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}
	if existing.UserID != actorID {
		return models.Listing{}, models.ErrForbidden
	}
	if existing.Status != models.ListingStatusRejected {
		return models.Listing{}, models.ErrNotRejected
	}

	if err := s.ListingRepo.UpdateModeration(ctx, id, models.ListingStatusPending, ""); err != nil {
		return models.Listing{}, err
	}
	existing.Status = models.ListingStatusPending
	existing.AdminNote = ""
	return existing, nil
}

// Approve moves a listing to approved and clears the admin note. Approving
// an already-approved listing succeeds without complaint.
func (s *ListingService) Approve(ctx context.Context, id int) (models.Listing, error) {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return models.Listing{}, err
	}

	if err := s.ListingRepo.UpdateModeration(ctx, id, models.ListingStatusApproved, ""); err != nil {
		return models.Listing{}, err
	}
	existing.Status = models.ListingStatusApproved
	existing.AdminNote = ""
	return existing, nil
}

// Reject requires a non-empty note explaining what must change. Validation
// happens before the listing is read or written; an empty note leaves the
// record untouched.
func (s *ListingService) Reject(ctx context.Context, cmd models.RejectCommand) (models.Listing, error) {
	note := strings.TrimSpace(cmd.Note)
	if note == "" {
		return models.Listing{}, models.ErrEmptyAdminNote
	}

	existing, err := s.ListingRepo.GetListingByID(ctx, cmd.ListingID)
	if err != nil {
		return models.Listing{}, err
	}

	if err := s.ListingRepo.UpdateModeration(ctx, cmd.ListingID, models.ListingStatusRejected, note); err != nil {
		return models.Listing{}, err
	}
	existing.Status = models.ListingStatusRejected
	existing.AdminNote = note
	return existing, nil
}

// RequestChanges is the reject variant used when the admin wants a specific
// correction: same transition, plus an email to the owner. The email is
// fire-and-forget.
func (s *ListingService) RequestChanges(ctx context.Context, cmd models.RejectCommand) (models.Listing, error) {
	listing, err := s.Reject(ctx, cmd)
	if err != nil {
		return models.Listing{}, err
	}

	s.notifyOwner(ctx, listing,
		"Your listing needs changes",
		fmt.Sprintf("Your listing %q was returned for changes by a moderator.\n\nModerator note: %s\n\nEdit the listing to resubmit it for review.", listing.Title, listing.AdminNote),
	)
	return listing, nil
}

func (s *ListingService) DeleteListing(ctx context.Context, actorID int, actorRole string, id int) error {
	existing, err := s.ListingRepo.GetListingByID(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin && existing.UserID != actorID {
		return models.ErrForbidden
	}
	return s.ListingRepo.DeleteListing(ctx, id)
}

// ClearExpiredBoosts is the housekeeping sweep entry point.
func (s *ListingService) ClearExpiredBoosts(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.ListingRepo == nil {
		return 0, nil
	}
	if now.IsZero() {
		now = time.Now()
	}
	return s.ListingRepo.ClearExpiredBoosts(ctx, now.UTC())
}

func (s *ListingService) notifyOwner(ctx context.Context, listing models.Listing, subject, body string) {
	if s.Notifier == nil || s.UserRepo == nil {
		return
	}
	owner, err := s.UserRepo.GetUserByID(ctx, listing.UserID)
	if err != nil {
		s.logError("listing %d: owner %d lookup failed: %v", listing.ID, listing.UserID, err)
		return
	}
	if err := s.Notifier.Send(ctx, owner.Email, subject, body); err != nil {
		s.logError("listing %d: notification to %s failed: %v", listing.ID, owner.Email, err)
	}
}

func (s *ListingService) logError(format string, args ...any) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
	}
}

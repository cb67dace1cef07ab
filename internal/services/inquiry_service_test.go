package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"subliBack/internal/models"
)

type fakeInquiryStore struct {
	inquiries []models.Inquiry
	nextID    int
}

func (f *fakeInquiryStore) CreateInquiry(_ context.Context, inquiry models.Inquiry) (models.Inquiry, error) {
	f.nextID++
	inquiry.ID = f.nextID
	f.inquiries = append(f.inquiries, inquiry)
	return inquiry, nil
}

func (f *fakeInquiryStore) GetInquiriesByOwnerID(_ context.Context, ownerID int) ([]models.Inquiry, error) {
	out := []models.Inquiry{}
	for _, i := range f.inquiries {
		if i.OwnerID == ownerID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeInquiryStore) GetAllInquiries(_ context.Context) ([]models.Inquiry, error) {
	return f.inquiries, nil
}

func (f *fakeInquiryStore) DeleteInquiry(_ context.Context, id int) error {
	for n, i := range f.inquiries {
		if i.ID == id {
			f.inquiries = append(f.inquiries[:n], f.inquiries[n+1:]...)
			return nil
		}
	}
	return errors.New("inquiry not found")
}

func newInquiryService(listings *fakeListingStore) (*InquiryService, *fakeInquiryStore, *fakeNotifier) {
	inquiries := &fakeInquiryStore{}
	notifier := &fakeNotifier{}
	svc := &InquiryService{
		InquiryRepo: inquiries,
		ListingRepo: listings,
		UserRepo: &fakeUserDirectory{users: map[int]models.User{
			10: {ID: 10, Name: "Lena", Email: "lena@example.com", Role: models.RoleLister},
		}},
		Notifier: notifier,
	}
	return svc, inquiries, notifier
}

func TestInquiryAgainstLiveListing(t *testing.T) {
	listings := newFakeListingStore()
	listings.listings[1] = models.Listing{ID: 1, Title: "live", City: "Berlin", UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	listings.nextID = 2
	svc, inquiries, notifier := newInquiryService(listings)

	created, err := svc.CreateInquiry(context.Background(), models.Inquiry{
		ListingID: 1, Name: "Max", Email: "max@example.com", Message: "Is it still available?",
	}, baseTime)
	if err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}
	if created.OwnerID != 10 {
		t.Fatalf("inquiry must capture the listing owner, got %d", created.OwnerID)
	}
	if len(inquiries.inquiries) != 1 {
		t.Fatalf("expected 1 stored inquiry, got %d", len(inquiries.inquiries))
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected owner notification, got %d", len(notifier.sent))
	}
}

func TestInquiryAgainstHiddenListingRejected(t *testing.T) {
	listings := newFakeListingStore()
	listings.listings[1] = models.Listing{ID: 1, Title: "pending", City: "Berlin", UserID: 10, Status: models.ListingStatusPending, ExpiresAt: baseTime.Add(24 * time.Hour)}
	listings.listings[2] = models.Listing{ID: 2, Title: "expired", City: "Berlin", UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(-time.Hour)}
	listings.nextID = 3
	svc, inquiries, _ := newInquiryService(listings)

	for _, id := range []int{1, 2} {
		_, err := svc.CreateInquiry(context.Background(), models.Inquiry{
			ListingID: id, Name: "Max", Email: "max@example.com", Message: "hi",
		}, baseTime)
		if !errors.Is(err, models.ErrListingNotLive) {
			t.Fatalf("listing %d: expected ErrListingNotLive, got %v", id, err)
		}
	}
	if len(inquiries.inquiries) != 0 {
		t.Fatalf("rejected inquiries must not be stored")
	}
}

func TestInquiryNotificationFailureDoesNotFailCreate(t *testing.T) {
	listings := newFakeListingStore()
	listings.listings[1] = models.Listing{ID: 1, Title: "live", City: "Berlin", UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	listings.nextID = 2
	svc, inquiries, notifier := newInquiryService(listings)
	notifier.fail = true

	_, err := svc.CreateInquiry(context.Background(), models.Inquiry{
		ListingID: 1, Name: "Max", Email: "max@example.com", Message: "hi",
	}, baseTime)
	if err != nil {
		t.Fatalf("mail failure must not fail inquiry creation: %v", err)
	}
	if len(inquiries.inquiries) != 1 {
		t.Fatalf("inquiry must be stored despite mail failure")
	}
}

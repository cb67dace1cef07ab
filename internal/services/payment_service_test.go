package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"subliBack/internal/models"
)

type fakeEventStore struct {
	seen map[string]bool
	fail bool
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{seen: make(map[string]bool)}
}

func (f *fakeEventStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	if f.fail {
		return false, errors.New("redis down")
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeEventStore) ClearProcessed(_ context.Context, eventID string) error {
	if f.fail {
		return errors.New("redis down")
	}
	delete(f.seen, eventID)
	return nil
}

func newPaymentService(store *fakeListingStore, events PaymentEventStore) *PaymentService {
	return &PaymentService{
		ListingRepo: store,
		EventRepo:   events,
		Config: PaymentConfig{
			WebhookSecret: "whsec_test",
			BoostPrice:    500,
			ExtendPrice:   900,
			Currency:      "eur",
		},
	}
}

// Scenario: expiry five days out, extension lands at old expiry plus the full
// 14-day window.
func TestExtendFromFutureExpiry(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(5 * 24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
		EventID: "evt_1", ListingID: 1, Operation: models.PaymentOpExtend,
	}, baseTime)
	if err != nil {
		t.Fatalf("ApplyCompletedPayment: %v", err)
	}

	want := baseTime.Add(19 * 24 * time.Hour)
	if got := store.listings[1].ExpiresAt; !got.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, got)
	}
}

// An already-expired listing gets a full fresh window measured from the
// moment of payment.
func TestExtendFromExpiredListing(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(-24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
		EventID: "evt_1", ListingID: 1, Operation: models.PaymentOpExtend,
	}, baseTime)
	if err != nil {
		t.Fatalf("ApplyCompletedPayment: %v", err)
	}

	want := baseTime.Add(models.DefaultListingTTL)
	if got := store.listings[1].ExpiresAt; !got.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, got)
	}
}

func TestExtendTwiceStrictlyIncreases(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	first := store.listings[1].ExpiresAt
	for i, eventID := range []string{"evt_1", "evt_2"} {
		err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
			EventID: eventID, ListingID: 1, Operation: models.PaymentOpExtend,
		}, baseTime)
		if err != nil {
			t.Fatalf("extend %d: %v", i, err)
		}
		if got := store.listings[1].ExpiresAt; !got.After(first) {
			t.Fatalf("extend %d did not move expiry forward: %s vs %s", i, got, first)
		}
		first = store.listings[1].ExpiresAt
	}

	want := baseTime.Add(24 * time.Hour).Add(2 * models.DefaultListingTTL)
	if got := store.listings[1].ExpiresAt; !got.Equal(want) {
		t.Fatalf("expected expiry %s after two extensions, got %s", want, got)
	}
}

func TestBoostDoesNotTouchExpiry(t *testing.T) {
	store := newFakeListingStore()
	expiry := baseTime.Add(5 * 24 * time.Hour)
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: expiry}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
		EventID: "evt_1", ListingID: 1, Operation: models.PaymentOpBoost,
	}, baseTime)
	if err != nil {
		t.Fatalf("ApplyCompletedPayment: %v", err)
	}

	if !store.listings[1].IsBoosted {
		t.Fatalf("expected boost flag set")
	}
	if !store.listings[1].ExpiresAt.Equal(expiry) {
		t.Fatalf("boost must not alter expiry: %s vs %s", store.listings[1].ExpiresAt, expiry)
	}
}

func TestRedeliveredEventIsAcknowledgedOnce(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	payment := models.CompletedPayment{EventID: "evt_dup", ListingID: 1, Operation: models.PaymentOpExtend}
	if err := svc.ApplyCompletedPayment(context.Background(), payment, baseTime); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	afterFirst := store.listings[1].ExpiresAt

	if err := svc.ApplyCompletedPayment(context.Background(), payment, baseTime); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if got := store.listings[1].ExpiresAt; !got.Equal(afterFirst) {
		t.Fatalf("redelivered event must not re-apply: %s vs %s", got, afterFirst)
	}
}

// A delivery that fails mid-apply must release its dedup mark, so the
// provider's retry of the same event id still lands the paid add-on.
func TestFailedApplyIsRetriedOnRedelivery(t *testing.T) {
	store := newFakeListingStore()
	expiry := baseTime.Add(24 * time.Hour)
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: expiry}
	store.nextID = 2
	store.failExtendOnce = true
	events := newFakeEventStore()
	svc := newPaymentService(store, events)

	payment := models.CompletedPayment{EventID: "evt_1", ListingID: 1, Operation: models.PaymentOpExtend}
	if err := svc.ApplyCompletedPayment(context.Background(), payment, baseTime); err == nil {
		t.Fatalf("expected error when the store rejects the extend")
	}
	if !store.listings[1].ExpiresAt.Equal(expiry) {
		t.Fatalf("failed delivery must not move expiry")
	}
	if events.seen["evt_1"] {
		t.Fatalf("failed delivery must release its dedup mark")
	}

	if err := svc.ApplyCompletedPayment(context.Background(), payment, baseTime); err != nil {
		t.Fatalf("retry after failed apply: %v", err)
	}
	want := expiry.Add(models.DefaultListingTTL)
	if got := store.listings[1].ExpiresAt; !got.Equal(want) {
		t.Fatalf("retry must apply the extension: expected %s, got %s", want, got)
	}
}

func TestMissingListingIsAcknowledged(t *testing.T) {
	store := newFakeListingStore()
	svc := newPaymentService(store, newFakeEventStore())

	err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
		EventID: "evt_1", ListingID: 404, Operation: models.PaymentOpBoost,
	}, baseTime)
	if err != nil {
		t.Fatalf("payment for deleted listing must be acknowledged, got %v", err)
	}
}

func TestUnknownOperationRejected(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
		EventID: "evt_1", ListingID: 1, Operation: "upgrade",
	}, baseTime)
	if !errors.Is(err, models.ErrInvalidPaymentOp) {
		t.Fatalf("expected ErrInvalidPaymentOp, got %v", err)
	}
}

func TestDedupStoreOutageDoesNotDropPayment(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	store.nextID = 2
	events := newFakeEventStore()
	events.fail = true
	svc := newPaymentService(store, events)

	err := svc.ApplyCompletedPayment(context.Background(), models.CompletedPayment{
		EventID: "evt_1", ListingID: 1, Operation: models.PaymentOpBoost,
	}, baseTime)
	if err != nil {
		t.Fatalf("dedup outage must fail open: %v", err)
	}
	if !store.listings[1].IsBoosted {
		t.Fatalf("boost must still apply when dedup store is down")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	err := svc.HandleWebhook(context.Background(), payload, "t=123,v1=deadbeef", baseTime)
	if !errors.Is(err, models.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if store.listings[1].IsBoosted || !store.listings[1].ExpiresAt.Equal(baseTime.Add(24*time.Hour)) {
		t.Fatalf("rejected webhook must not mutate state")
	}
}

func TestCheckoutRequiresOwnership(t *testing.T) {
	store := newFakeListingStore()
	store.listings[1] = models.Listing{ID: 1, UserID: 10, Status: models.ListingStatusApproved, ExpiresAt: baseTime.Add(24 * time.Hour)}
	store.nextID = 2
	svc := newPaymentService(store, newFakeEventStore())

	_, err := svc.CreateCheckoutSession(context.Background(), 99, models.CheckoutRequest{ListingID: 1, Operation: models.PaymentOpBoost})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, err = svc.CreateCheckoutSession(context.Background(), 10, models.CheckoutRequest{ListingID: 1, Operation: "upgrade"})
	if !errors.Is(err, models.ErrInvalidPaymentOp) {
		t.Fatalf("expected ErrInvalidPaymentOp, got %v", err)
	}
}

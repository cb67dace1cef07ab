package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"

	"subliBack/internal/models"
	"subliBack/internal/repositories"
)

// PaymentEventStore deduplicates provider webhook deliveries by event id.
// ClearProcessed releases a mark so a retried delivery can apply again.
type PaymentEventStore interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	ClearProcessed(ctx context.Context, eventID string) error
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	// Prices in the smallest currency unit.
	BoostPrice  int64
	ExtendPrice int64
	Currency    string
}

type PaymentService struct {
	ListingRepo ListingStore
	EventRepo   PaymentEventStore
	Config      PaymentConfig
	InfoLog     *log.Logger
	ErrorLog    *log.Logger
}

func NewPaymentService(cfg PaymentConfig, listingRepo ListingStore, eventRepo PaymentEventStore, infoLog, errorLog *log.Logger) *PaymentService {
	stripe.Key = cfg.SecretKey
	return &PaymentService{
		ListingRepo: listingRepo,
		EventRepo:   eventRepo,
		Config:      cfg,
		InfoLog:     infoLog,
		ErrorLog:    errorLog,
	}
}

// CreateCheckoutSession builds a Stripe Checkout session for a boost or
// extend add-on on a listing the actor owns. The listing id and operation
// ride in the session metadata and come back on the webhook.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, actorID int, req models.CheckoutRequest) (models.CheckoutResponse, error) {
	if !models.IsValidPaymentOp(req.Operation) {
		return models.CheckoutResponse{}, models.ErrInvalidPaymentOp
	}

	listing, err := s.ListingRepo.GetListingByID(ctx, req.ListingID)
	if err != nil {
		return models.CheckoutResponse{}, err
	}
	if listing.UserID != actorID {
		return models.CheckoutResponse{}, models.ErrForbidden
	}

	amount := s.Config.BoostPrice
	name := fmt.Sprintf("Boost listing %q", listing.Title)
	if req.Operation == models.PaymentOpExtend {
		amount = s.Config.ExtendPrice
		name = fmt.Sprintf("Extend listing %q by 14 days", listing.Title)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.Config.SuccessURL),
		CancelURL:  stripe.String(s.Config.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.Config.Currency),
					UnitAmount: stripe.Int64(amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("listing_id", strconv.Itoa(listing.ID))
	params.AddMetadata("operation", req.Operation)

	sess, err := session.New(params)
	if err != nil {
		return models.CheckoutResponse{}, err
	}

	return models.CheckoutResponse{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

// HandleWebhook verifies the provider signature and applies the paid add-on.
// An unverifiable payload is rejected with no mutation. Event types other
// than checkout completion are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string, now time.Time) error {
	event, err := webhook.ConstructEvent(payload, sigHeader, s.Config.WebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	listingID, err := strconv.Atoi(sess.Metadata["listing_id"])
	if err != nil {
		return fmt.Errorf("checkout session %s: bad listing_id metadata: %w", sess.ID, err)
	}

	payment := models.CompletedPayment{
		EventID:   event.ID,
		ListingID: listingID,
		Operation: sess.Metadata["operation"],
		PaidAt:    now,
	}
	return s.ApplyCompletedPayment(ctx, payment, now)
}

// ApplyCompletedPayment mutates listing state for a completed payment.
// Redelivered events are acknowledged without re-applying; a payment for a
// listing that no longer exists is acknowledged as a no-op so the provider
// stops retrying.
func (s *PaymentService) ApplyCompletedPayment(ctx context.Context, payment models.CompletedPayment, now time.Time) error {
	if !models.IsValidPaymentOp(payment.Operation) {
		return models.ErrInvalidPaymentOp
	}

	if s.EventRepo != nil && payment.EventID != "" {
		first, err := s.EventRepo.MarkProcessed(ctx, payment.EventID)
		if err != nil {
			// Dedup store being down is not a reason to drop a payment:
			// boost is idempotent and extend is applied once per delivery.
			s.logError("payment event %s: dedup check failed: %v", payment.EventID, err)
		} else if !first {
			return nil
		}
	}

	listing, err := s.ListingRepo.GetListingByID(ctx, payment.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrListingNotFound) {
			s.logInfo("payment event %s: listing %d gone, acknowledging without changes", payment.EventID, payment.ListingID)
			return nil
		}
		return err
	}

	switch payment.Operation {
	case models.PaymentOpExtend:
		// Always a full fresh window from whichever is later, so an
		// extension can never shorten a future expiry and an expired
		// listing gets the full 14 days from the moment of payment.
		base := listing.ExpiresAt
		if now.After(base) {
			base = now
		}
		until := base.Add(models.DefaultListingTTL)
		if err := s.ListingRepo.ExtendExpiry(ctx, listing.ID, until); err != nil {
			s.releaseEvent(ctx, payment.EventID)
			return err
		}
		s.logInfo("listing %d: expiry extended to %s", listing.ID, until.Format(time.RFC3339))
	case models.PaymentOpBoost:
		if err := s.ListingRepo.SetBoosted(ctx, listing.ID, true); err != nil {
			s.releaseEvent(ctx, payment.EventID)
			return err
		}
		s.logInfo("listing %d: boost activated", listing.ID)
	}
	return nil
}

// releaseEvent drops the dedup mark after a failed apply. The provider
// retries on error, and the retry must not be swallowed as a duplicate.
func (s *PaymentService) releaseEvent(ctx context.Context, eventID string) {
	if s.EventRepo == nil || eventID == "" {
		return
	}
	if err := s.EventRepo.ClearProcessed(ctx, eventID); err != nil {
		s.logError("payment event %s: failed to release dedup mark: %v", eventID, err)
	}
}

func (s *PaymentService) logInfo(format string, args ...any) {
	if s.InfoLog != nil {
		s.InfoLog.Printf(format, args...)
	}
}

func (s *PaymentService) logError(format string, args ...any) {
	if s.ErrorLog != nil {
		s.ErrorLog.Printf(format, args...)
	}
}

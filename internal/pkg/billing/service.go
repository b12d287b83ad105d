package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	"github.com/revivapix/RevivaPix/app/models"
)

// Service reconciles confirmed payment events into durable credit grants and
// transaction records. Two entry points converge on the same grant path: the
// client-driven VerifyPayment after redirect-back, and the provider-pushed
// HandleWebhook. Both are safe under concurrent and repeated delivery.
type Service struct {
	repo    Repository
	gateway Gateway
	cfg     Config
}

// NewService creates a billing service from injected collaborators.
func NewService(repo Repository, gateway Gateway, cfg Config) *Service {
	return &Service{repo: repo, gateway: gateway, cfg: cfg}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gateway Gateway, cfg Config) *Service {
	return NewService(NewRepository(db), gateway, cfg)
}

// VerifyPayment is the client-driven reconciliation entry point: the client
// posts the session id after the provider redirected it back. Grants for
// subscription-mode sessions are left to the subscription webhook events so
// the two paths cannot double-credit.
func (s *Service) VerifyPayment(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrMissingField
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		log.Errorf("[Billing] session fetch failed id=%s: %v", sessionID, err)
		return ErrReconciliationFailed
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return ErrPaymentNotCompleted
	}
	if sess.Mode == stripe.CheckoutSessionModeSubscription {
		return nil
	}

	return s.applyGrantFromSession(ctx, sess)
}

// HandleWebhook verifies the provider signature, deduplicates the event and
// applies the corresponding state change. Signature failures reject before
// any mutation. Redeliveries of cleanly processed events short-circuit after
// the dedup insert; events whose processing failed run again, so provider
// retries can converge once the obstacle (say, a user row created late) is
// gone.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) (*WebhookOutcome, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warnf("[Billing] webhook signature verification failed: %v", err)
		return nil, ErrSignatureInvalid
	}

	outcome := &WebhookOutcome{EventType: string(event.Type)}

	created, stored, err := s.repo.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	})
	if err != nil {
		log.Errorf("[Billing] webhook event persistence failed type=%s: %v", event.Type, err)
		return nil, ErrReconciliationFailed
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		outcome.Duplicate = true
		return outcome, nil
	}

	var procErr error
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if procErr = json.Unmarshal(event.Data.Raw, &sess); procErr == nil {
			// Subscription-mode completions are reconciled by the
			// customer.subscription.* events that carry the same metadata.
			if sess.Mode != stripe.CheckoutSessionModeSubscription {
				procErr = s.applyGrantFromSession(ctx, &sess)
			}
		}
		outcome.Processed = true
	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if procErr = json.Unmarshal(event.Data.Raw, &sub); procErr == nil {
			procErr = s.syncSubscription(ctx, &sub)
		}
		outcome.Processed = true
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if procErr = json.Unmarshal(event.Data.Raw, &sub); procErr == nil {
			procErr = s.clearSubscription(ctx, &sub)
		}
		outcome.Processed = true
	default:
		// Acknowledged without mutation.
	}

	if markErr := s.repo.MarkWebhookProcessed(ctx, stored.ID, procErr); markErr != nil {
		log.Errorf("[Billing] failed to mark webhook event %d processed: %v", stored.ID, markErr)
	}
	if procErr != nil {
		log.Errorf("[Billing] webhook processing failed type=%s event=%s: %v", event.Type, event.ID, procErr)
		if errors.Is(procErr, ErrUserNotFound) {
			return outcome, ErrUserNotFound
		}
		return outcome, ErrReconciliationFailed
	}
	return outcome, nil
}

// applyGrantFromSession converts a paid checkout session into an idempotent
// credit grant plus transaction record.
func (s *Service) applyGrantFromSession(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID, credits, err := parseGrantMetadata(sess.Metadata)
	if err != nil {
		return fmt.Errorf("session %s: %w", sess.ID, err)
	}

	// The payment intent is the provider payment id; the session id is a
	// stable fallback for sessions retrieved without expansion.
	paymentID := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		paymentID = sess.PaymentIntent.ID
	}

	applied, err := s.repo.ApplyGrant(ctx, GrantInput{
		UserID:        userID,
		PaymentID:     paymentID,
		PaymentMethod: models.PaymentProviderStripe,
		AmountCents:   sess.AmountTotal,
		Credits:       credits,
	})
	if err != nil {
		return err
	}
	if !applied {
		log.Infof("[Billing] payment %s already reconciled, skipping", paymentID)
	}
	return nil
}

// syncSubscription mirrors provider subscription state onto the user and, for
// entitling statuses, grants the period's credits. The grant is keyed by
// subscription id + current period start, so each billing period credits
// exactly once no matter how often the event is redelivered.
func (s *Service) syncSubscription(ctx context.Context, sub *stripe.Subscription) error {
	userID, credits, err := parseGrantMetadata(sub.Metadata)
	if err != nil {
		return fmt.Errorf("subscription %s: %w", sub.ID, err)
	}
	planID := strings.TrimSpace(sub.Metadata[metaKeyPlanID])

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}

	if err := s.repo.UpdateSubscription(ctx, userID, SubscriptionUpdate{
		SubscriptionID:    sub.ID,
		Status:            string(sub.Status),
		Plan:              planID,
		CurrentPeriodEnd:  periodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}); err != nil {
		return err
	}

	if !isEntitlingStatus(string(sub.Status)) {
		return nil
	}

	amountCents := int64(0)
	if plan, ok := LookupPlan(planID); ok {
		amountCents = plan.PriceCents
	}

	_, err = s.repo.ApplyGrant(ctx, GrantInput{
		UserID:        userID,
		PaymentID:     fmt.Sprintf("%s:%d", sub.ID, sub.CurrentPeriodStart),
		PaymentMethod: models.PaymentProviderStripe,
		AmountCents:   amountCents,
		Credits:       credits,
	})
	return err
}

// clearSubscription handles customer.subscription.deleted: subscription
// fields are cleared, the credit balance is never touched by this event.
func (s *Service) clearSubscription(ctx context.Context, sub *stripe.Subscription) error {
	userID := parseUserID(sub.Metadata)
	return s.repo.ClearSubscription(ctx, userID, sub.ID)
}

// GetSubscriptionStatus returns the client-facing subscription view for a user.
func (s *Service) GetSubscriptionStatus(ctx context.Context, userID uint) (*SubscriptionStatus, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionStatus == "" {
		return &SubscriptionStatus{Status: "none"}, nil
	}
	return &SubscriptionStatus{
		Status:            user.SubscriptionStatus,
		PlanID:            user.SubscriptionPlan,
		CurrentPeriodEnd:  user.CurrentPeriodEnd,
		CancelAtPeriodEnd: user.CancelAtPeriodEnd,
	}, nil
}

func parseGrantMetadata(meta map[string]string) (uint, int64, error) {
	userID := parseUserID(meta)
	if userID == 0 {
		return 0, 0, fmt.Errorf("metadata is missing a usable %s", metaKeyUserID)
	}
	credits, err := strconv.ParseInt(strings.TrimSpace(meta[metaKeyCredits]), 10, 64)
	if err != nil || credits <= 0 {
		return 0, 0, fmt.Errorf("metadata is missing a usable %s", metaKeyCredits)
	}
	return userID, credits, nil
}

func parseUserID(meta map[string]string) uint {
	raw := strings.TrimSpace(meta[metaKeyUserID])
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}

package billing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
)

// StartCheckout validates the plan and identity, builds a hosted checkout
// session for it and returns the provider's session handle unchanged. The
// session metadata embeds {userId, planId, credits} verbatim; reconciliation
// depends on that round-trip.
func (s *Service) StartCheckout(ctx context.Context, in CheckoutInput) (*CheckoutHandle, error) {
	plan, ok := LookupPlan(in.PlanID)
	if !ok {
		return nil, ErrInvalidPlan
	}
	if in.UserID == 0 || strings.TrimSpace(in.UserEmail) == "" {
		return nil, ErrMissingField
	}

	base := s.redirectBase(in.Origin)
	metadata := map[string]string{
		metaKeyUserID:  strconv.FormatUint(uint64(in.UserID), 10),
		metaKeyPlanID:  plan.ID,
		metaKeyCredits: strconv.FormatInt(plan.Credits, 10),
	}

	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency: stripe.String(plan.Currency),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        stripe.String(plan.Name),
			Description: stripe.String(fmt.Sprintf("%d credits", plan.Credits)),
		},
		UnitAmount: stripe.Int64(plan.PriceCents),
	}

	mode := stripe.CheckoutSessionModePayment
	if plan.IsRecurring() {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String(plan.Interval),
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(mode)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(base + "/payment/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(base + "/payment/cancel"),
		CustomerEmail: stripe.String(strings.TrimSpace(in.UserEmail)),
	}
	params.Metadata = metadata
	if plan.IsRecurring() {
		// Subscription lifecycle events only see subscription metadata, so
		// the linkage must be copied there as well.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		log.Errorf("[Billing] checkout session creation failed user=%d plan=%s: %v", in.UserID, plan.ID, err)
		return nil, ErrCheckoutCreationFailed
	}

	return &CheckoutHandle{ID: sess.ID, URL: sess.URL}, nil
}

// redirectBase picks the redirect base URL: the caller origin when trusted,
// otherwise the configured public domain.
func (s *Service) redirectBase(origin string) string {
	o := strings.TrimRight(strings.TrimSpace(origin), "/")
	if o != "" {
		for _, allowed := range s.cfg.AllowedOrigins {
			if strings.EqualFold(strings.TrimRight(allowed, "/"), o) {
				return o
			}
		}
	}
	return strings.TrimRight(s.cfg.PublicDomain, "/")
}

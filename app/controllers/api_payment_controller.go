package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revivapix/RevivaPix/internal/pkg/billing"
	"github.com/revivapix/RevivaPix/internal/pkg/cache"
	"github.com/revivapix/RevivaPix/internal/pkg/usercontext"
)

// PaymentController exposes the checkout and reconciliation endpoints. The
// billing service is injected so tests can run it against fakes.
type PaymentController struct {
	billing *billing.Service
}

// NewPaymentController creates a payment controller
func NewPaymentController(svc *billing.Service) *PaymentController {
	return &PaymentController{billing: svc}
}

type checkoutRequest struct {
	PlanID string `json:"planId"`
}

type verifyRequest struct {
	SessionID string `json:"sessionId"`
}

// HandleListPlans returns the plan catalog
func (pc *PaymentController) HandleListPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": billing.ListPlans()})
}

// HandleCreateCheckoutSession starts a hosted checkout for a one-time plan
func (pc *PaymentController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	return pc.startCheckout(c, false)
}

// HandleCreateSubscription starts a hosted checkout for a recurring plan
func (pc *PaymentController) HandleCreateSubscription(c *fiber.Ctx) error {
	return pc.startCheckout(c, true)
}

func (pc *PaymentController) startCheckout(c *fiber.Ctx, wantRecurring bool) error {
	userCtx := usercontext.GetUserContext(c)

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
	}

	plan, ok := billing.LookupPlan(req.PlanID)
	if ok && plan.IsRecurring() != wantRecurring {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan", "message": "Plan does not match this endpoint"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 20*time.Second)
	defer cancel()

	handle, err := pc.billing.StartCheckout(ctx, billing.CheckoutInput{
		PlanID:    req.PlanID,
		UserID:    userCtx.UserID,
		UserEmail: usercontext.GetUserEmail(c),
		Origin:    c.Get(fiber.HeaderOrigin),
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidPlan):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_plan", "message": "Unknown plan"})
		case errors.Is(err, billing.ErrMissingField):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Missing user identity"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "checkout_failed", "message": "Failed to create checkout session"})
		}
	}

	return c.JSON(fiber.Map{"id": handle.ID, "url": handle.URL})
}

// HandleVerifyPayment reconciles a checkout session after redirect-back
func (pc *PaymentController) HandleVerifyPayment(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 20*time.Second)
	defer cancel()

	if err := pc.billing.VerifyPayment(ctx, req.SessionID); err != nil {
		switch {
		case errors.Is(err, billing.ErrMissingField):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "sessionId is required"})
		case errors.Is(err, billing.ErrPaymentNotCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "payment_not_completed", "message": "Payment has not completed"})
		case errors.Is(err, billing.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "verification_failed", "message": "Failed to verify payment"})
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleWebhook receives provider webhook deliveries. The route is public;
// authenticity comes from the signature check inside the service.
func (pc *PaymentController) HandleWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	outcome, err := pc.billing.HandleWebhook(ctx, rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrSignatureInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		default:
			// Includes the unknown-user case: a 500 keeps the provider
			// retrying until the event becomes applicable or expires.
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
		}
	}

	if outcome.Duplicate {
		return c.JSON(fiber.Map{"received": true, "duplicate": true})
	}
	return c.JSON(fiber.Map{"received": true})
}

// subscriptionStatusTTL bounds how stale the cached subscription view can
// get between webhook-driven updates.
const subscriptionStatusTTL = 30 * time.Second

// HandleSubscriptionStatus returns the caller's subscription view, served
// from a short-lived Redis cache when possible.
func (pc *PaymentController) HandleSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	cacheKey := fmt.Sprintf("subscription_status:%d", userCtx.UserID)

	if cached, err := cache.Get(cacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	status, err := pc.billing.GetSubscriptionStatus(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, billing.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscription"})
	}

	if raw, err := json.Marshal(status); err == nil {
		_ = cache.Set(cacheKey, raw, subscriptionStatusTTL)
	}
	return c.JSON(status)
}

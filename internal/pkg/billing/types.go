package billing

import "time"

// Metadata keys embedded in the checkout session. This metadata round-trip is
// the only linkage between a provider payment event and the local user and
// credit grant, so the keys must stay stable.
const (
	metaKeyUserID  = "userId"
	metaKeyPlanID  = "planId"
	metaKeyCredits = "credits"
)

// Config carries the provider and redirect configuration for the billing
// service. It is passed explicitly into NewService; there is no ambient
// package-level provider state.
type Config struct {
	// WebhookSecret is the shared secret used to verify webhook signatures.
	WebhookSecret string
	// PublicDomain is the default redirect base when the caller origin is
	// absent or untrusted, e.g. "https://www.revivapix.app".
	PublicDomain string
	// AllowedOrigins lists caller origins trusted for redirect URLs.
	AllowedOrigins []string
}

// CheckoutInput is the request to start a hosted checkout.
type CheckoutInput struct {
	PlanID    string
	UserID    uint
	UserEmail string
	// Origin is the caller's origin header, used for redirect URLs when
	// present in the allowed-origin list.
	Origin string
}

// CheckoutHandle identifies the provider-hosted checkout session returned to
// the client for redirection.
type CheckoutHandle struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// GrantInput is one idempotent credit grant: the provider payment id keys the
// at-most-once guarantee.
type GrantInput struct {
	UserID        uint
	PaymentID     string
	PaymentMethod string
	AmountCents   int64
	Credits       int64
}

// SubscriptionUpdate mirrors provider subscription state onto the user.
type SubscriptionUpdate struct {
	SubscriptionID    string
	Status            string
	Plan              string
	CurrentPeriodEnd  *time.Time
	CancelAtPeriodEnd bool
}

// SubscriptionStatus is the client-facing subscription view.
type SubscriptionStatus struct {
	Status            string     `json:"status"`
	PlanID            string     `json:"planId,omitempty"`
	CurrentPeriodEnd  *time.Time `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancelAtPeriodEnd"`
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// WebhookOutcome reports what a webhook delivery did, for response shaping
// and logging.
type WebhookOutcome struct {
	EventType string
	Duplicate bool
	Processed bool
}

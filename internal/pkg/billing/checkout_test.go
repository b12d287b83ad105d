package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/revivapix/RevivaPix/app/models"
)

func newCheckoutService(gw *fakeGateway) *Service {
	repo := newFakeRepository(&models.User{ID: 42, Email: "jane@example.com", Credits: 10})
	return NewService(repo, gw, Config{
		WebhookSecret:  "whsec_test",
		PublicDomain:   "https://www.revivapix.app",
		AllowedOrigins: []string{"https://www.revivapix.app", "http://localhost:3000"},
	})
}

func TestStartCheckoutEmbedsGrantMetadata(t *testing.T) {
	gw := &fakeGateway{}
	svc := newCheckoutService(gw)

	handle, err := svc.StartCheckout(context.Background(), CheckoutInput{
		PlanID:    "standard",
		UserID:    42,
		UserEmail: "jane@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", handle.ID)
	assert.NotEmpty(t, handle.URL)

	require.Len(t, gw.createCalls, 1)
	params := gw.createCalls[0]
	assert.Equal(t, "42", params.Metadata["userId"])
	assert.Equal(t, "standard", params.Metadata["planId"])
	assert.Equal(t, "15", params.Metadata["credits"])
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *params.Mode)
	assert.Nil(t, params.SubscriptionData)

	require.Len(t, params.LineItems, 1)
	price := params.LineItems[0].PriceData
	assert.Equal(t, int64(1000), *price.UnitAmount)
	assert.Nil(t, price.Recurring)
}

func TestStartCheckoutRecurringPlan(t *testing.T) {
	gw := &fakeGateway{}
	svc := newCheckoutService(gw)

	_, err := svc.StartCheckout(context.Background(), CheckoutInput{
		PlanID:    "pro",
		UserID:    42,
		UserEmail: "jane@example.com",
	})
	require.NoError(t, err)

	require.Len(t, gw.createCalls, 1)
	params := gw.createCalls[0]
	assert.Equal(t, string(stripe.CheckoutSessionModeSubscription), *params.Mode)

	require.NotNil(t, params.SubscriptionData)
	assert.Equal(t, params.Metadata, params.SubscriptionData.Metadata)

	price := params.LineItems[0].PriceData
	require.NotNil(t, price.Recurring)
	assert.Equal(t, "month", *price.Recurring.Interval)
	assert.Equal(t, int64(4990), *price.UnitAmount)
}

func TestStartCheckoutUnknownPlan(t *testing.T) {
	gw := &fakeGateway{}
	svc := newCheckoutService(gw)

	_, err := svc.StartCheckout(context.Background(), CheckoutInput{
		PlanID:    "enterprise",
		UserID:    42,
		UserEmail: "jane@example.com",
	})
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.Empty(t, gw.createCalls, "unknown plan must not reach the provider")
}

func TestStartCheckoutMissingIdentity(t *testing.T) {
	gw := &fakeGateway{}
	svc := newCheckoutService(gw)

	_, err := svc.StartCheckout(context.Background(), CheckoutInput{PlanID: "basic", UserEmail: "jane@example.com"})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = svc.StartCheckout(context.Background(), CheckoutInput{PlanID: "basic", UserID: 42, UserEmail: "  "})
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Empty(t, gw.createCalls)
}

func TestStartCheckoutProviderFailure(t *testing.T) {
	gw := &fakeGateway{createErr: errors.New("stripe is down")}
	svc := newCheckoutService(gw)

	_, err := svc.StartCheckout(context.Background(), CheckoutInput{
		PlanID:    "basic",
		UserID:    42,
		UserEmail: "jane@example.com",
	})
	assert.ErrorIs(t, err, ErrCheckoutCreationFailed)
}

func TestRedirectBase(t *testing.T) {
	svc := newCheckoutService(&fakeGateway{})

	tests := []struct {
		origin string
		want   string
	}{
		{origin: "http://localhost:3000", want: "http://localhost:3000"},
		{origin: "http://localhost:3000/", want: "http://localhost:3000"},
		{origin: "HTTP://LOCALHOST:3000", want: "HTTP://LOCALHOST:3000"},
		{origin: "https://evil.example.com", want: "https://www.revivapix.app"},
		{origin: "", want: "https://www.revivapix.app"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.redirectBase(tt.origin), "origin %q", tt.origin)
	}
}

func TestStartCheckoutSuccessURL(t *testing.T) {
	gw := &fakeGateway{}
	svc := newCheckoutService(gw)

	_, err := svc.StartCheckout(context.Background(), CheckoutInput{
		PlanID:    "basic",
		UserID:    42,
		UserEmail: "jane@example.com",
		Origin:    "http://localhost:3000",
	})
	require.NoError(t, err)

	params := gw.createCalls[0]
	assert.Equal(t, "http://localhost:3000/payment/success?session_id={CHECKOUT_SESSION_ID}", *params.SuccessURL)
	assert.Equal(t, "http://localhost:3000/payment/cancel", *params.CancelURL)
}

package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/revivapix/RevivaPix/internal/pkg/middleware"
)

// ApiRouter installs the payment, credits and restoration routes.
type ApiRouter struct {
	ctrl Controllers
}

func NewApiRouter(ctrl Controllers) *ApiRouter {
	return &ApiRouter{ctrl: ctrl}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// The webhook route stays outside the rate limiter so provider retries
	// are never throttled away; it authenticates via signature instead.
	app.Post("/api/webhook", h.ctrl.Payment.HandleWebhook)

	api := app.Group("/api", limiter.New())

	api.Get("/plans", h.ctrl.Payment.HandleListPlans)

	authed := api.Group("", middleware.RequireAPISessionAuth)
	authed.Post("/create-checkout-session", h.ctrl.Payment.HandleCreateCheckoutSession)
	authed.Post("/create-subscription", h.ctrl.Payment.HandleCreateSubscription)
	authed.Post("/verify-payment", h.ctrl.Payment.HandleVerifyPayment)
	authed.Get("/subscription-status", h.ctrl.Payment.HandleSubscriptionStatus)

	authed.Get("/credits", h.ctrl.Credits.HandleGetCredits)
	authed.Get("/transactions", h.ctrl.Credits.HandleListTransactions)
	authed.Post("/refund-requests", h.ctrl.Credits.HandleRequestRefund)
	authed.Get("/refund-requests", h.ctrl.Credits.HandleListRefundRequests)

	authed.Post("/restore", h.ctrl.Image.HandleRestore)
	authed.Get("/images", h.ctrl.Image.HandleHistory)
	authed.Get("/images/:uuid/download", h.ctrl.Image.HandleDownload)
	authed.Delete("/images/:uuid", h.ctrl.Image.HandleDelete)

	admin := api.Group("/admin", middleware.RequireAPIAdmin)
	admin.Get("/refund-requests", h.ctrl.Credits.HandleListPendingRefunds)
	admin.Post("/refund-requests/:id/approve", h.ctrl.Credits.HandleApproveRefund)
	admin.Post("/refund-requests/:id/reject", h.ctrl.Credits.HandleRejectRefund)
}

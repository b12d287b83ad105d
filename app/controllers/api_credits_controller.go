package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revivapix/RevivaPix/internal/pkg/billing"
	"github.com/revivapix/RevivaPix/internal/pkg/usercontext"
)

// CreditsController exposes the credit ledger and refund endpoints.
type CreditsController struct {
	billing *billing.Service
}

// NewCreditsController creates a credits controller
func NewCreditsController(svc *billing.Service) *CreditsController {
	return &CreditsController{billing: svc}
}

type refundRequestBody struct {
	TransactionID uint   `json:"transaction_id"`
	Reason        string `json:"reason"`
}

// HandleGetCredits returns the caller's credit balance
func (cc *CreditsController) HandleGetCredits(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	balance, err := cc.billing.Balance(ctx, userCtx.UserID)
	if err != nil {
		if errors.Is(err, billing.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load balance"})
	}
	return c.JSON(fiber.Map{"credits": balance})
}

// HandleListTransactions returns the caller's ledger history
func (cc *CreditsController) HandleListTransactions(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	txs, err := cc.billing.Transactions(ctx, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load transactions"})
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

// HandleRequestRefund opens a refund request for one of the caller's transactions
func (cc *CreditsController) HandleRequestRefund(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var body refundRequestBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid JSON body"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	req, err := cc.billing.RequestRefund(ctx, userCtx.UserID, body.TransactionID, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrMissingField):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "transaction_id is required"})
		case errors.Is(err, billing.ErrTransactionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Transaction not found"})
		case errors.Is(err, billing.ErrRefundNotEligible):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "not_eligible", "message": "Transaction is not eligible for a refund"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to create refund request"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

// HandleListRefundRequests returns the caller's refund requests
func (cc *CreditsController) HandleListRefundRequests(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	reqs, err := cc.billing.ListRefundRequests(ctx, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load refund requests"})
	}
	return c.JSON(fiber.Map{"refund_requests": reqs})
}

// HandleListPendingRefunds returns all unresolved refund requests (admin)
func (cc *CreditsController) HandleListPendingRefunds(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	reqs, err := cc.billing.ListPendingRefundRequests(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load refund requests"})
	}
	return c.JSON(fiber.Map{"refund_requests": reqs})
}

// HandleApproveRefund resolves a pending refund request and debits the credits (admin)
func (cc *CreditsController) HandleApproveRefund(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	if err := cc.billing.ApproveRefund(ctx, uint(requestID)); err != nil {
		switch {
		case errors.Is(err, billing.ErrRefundRequestNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Refund request not found"})
		case errors.Is(err, billing.ErrRefundAlreadyResolved):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "already_resolved", "message": "Refund request is already resolved"})
		case errors.Is(err, billing.ErrInsufficientCredits):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "insufficient_credits", "message": "User has already spent the credits"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to approve refund"})
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleRejectRefund resolves a pending refund request without a balance change (admin)
func (cc *CreditsController) HandleRejectRefund(c *fiber.Ctx) error {
	requestID, err := c.ParamsInt("id")
	if err != nil || requestID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Invalid request id"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	if err := cc.billing.RejectRefund(ctx, uint(requestID)); err != nil {
		if errors.Is(err, billing.ErrRefundRequestNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Refund request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to reject refund"})
	}
	return c.JSON(fiber.Map{"ok": true})
}

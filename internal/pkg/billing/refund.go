package billing

import (
	"context"
	"strings"
	"time"

	"github.com/revivapix/RevivaPix/app/models"
)

// refundWindow is how long after purchase a transaction stays refundable.
const refundWindow = 7 * 24 * time.Hour

// IsRefundEligible reports whether a transaction can still be refunded:
// created strictly within the trailing seven days of now, boundary excluded.
func IsRefundEligible(tx *models.CreditTransaction, now time.Time) bool {
	if tx == nil {
		return false
	}
	return tx.CreatedAt.After(now.Add(-refundWindow))
}

// RequestRefund opens a pending refund request for one of the user's own
// completed transactions. Amount and credits are snapshotted from the
// transaction so later plan changes cannot alter the refund.
func (s *Service) RequestRefund(ctx context.Context, userID uint, transactionID uint, reason string) (*models.RefundRequest, error) {
	if userID == 0 || transactionID == 0 {
		return nil, ErrMissingField
	}

	tx, err := s.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	if tx.Status != models.TransactionStatusCompleted {
		return nil, ErrRefundNotEligible
	}
	if !IsRefundEligible(tx, time.Now()) {
		return nil, ErrRefundNotEligible
	}

	req := &models.RefundRequest{
		UserID:        userID,
		TransactionID: tx.ID,
		Reason:        strings.TrimSpace(reason),
		Status:        models.RefundStatusPending,
		AmountCents:   tx.AmountCents,
		Credits:       tx.Credits,
	}
	if err := s.repo.CreateRefundRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListRefundRequests returns the user's refund requests, newest first.
func (s *Service) ListRefundRequests(ctx context.Context, userID uint) ([]models.RefundRequest, error) {
	return s.repo.ListRefundRequestsByUser(ctx, userID)
}

// ListPendingRefundRequests returns all unresolved requests for review.
func (s *Service) ListPendingRefundRequests(ctx context.Context) ([]models.RefundRequest, error) {
	return s.repo.ListPendingRefundRequests(ctx)
}

// ApproveRefund resolves a pending request: the granted credits are debited
// and the transaction marked refunded in one atomic unit.
func (s *Service) ApproveRefund(ctx context.Context, requestID uint) error {
	return s.repo.ApproveRefundRequest(ctx, requestID)
}

// RejectRefund resolves a pending request without any balance change.
func (s *Service) RejectRefund(ctx context.Context, requestID uint) error {
	return s.repo.RejectRefundRequest(ctx, requestID)
}

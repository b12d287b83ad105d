package billing

import (
	"context"

	"github.com/revivapix/RevivaPix/app/models"
)

// Balance returns the user's current credit balance.
func (s *Service) Balance(ctx context.Context, userID uint) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// Transactions returns the user's ledger history, newest first.
func (s *Service) Transactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// DebitCredits spends usage credits, e.g. one per image restoration. The
// underlying update is guarded so the balance never goes negative; callers
// see ErrInsufficientCredits and can prompt an upsell instead of a generic
// failure.
func (s *Service) DebitCredits(ctx context.Context, userID uint, amount int64) error {
	if amount <= 0 {
		return ErrMissingField
	}
	return s.repo.AdjustBalance(ctx, userID, -amount)
}

// CreditBack returns previously debited credits, used when a restoration
// fails after its debit.
func (s *Service) CreditBack(ctx context.Context, userID uint, amount int64) error {
	if amount <= 0 {
		return ErrMissingField
	}
	return s.repo.AdjustBalance(ctx, userID, amount)
}

package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/revivapix/RevivaPix/app/models"
)

// fakeRepository is an in-memory Repository with the same transactional
// semantics as the GORM implementation: grants are all-or-nothing and
// idempotent per provider payment id.
type fakeRepository struct {
	mu              sync.Mutex
	users           map[uint]*models.User
	txs             []models.CreditTransaction
	refunds         []models.RefundRequest
	events          map[string]*models.WebhookEvent
	nextID          uint
	failGrantInsert bool
}

func newFakeRepository(users ...*models.User) *fakeRepository {
	r := &fakeRepository{
		users:  make(map[uint]*models.User),
		events: make(map[string]*models.WebhookEvent),
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepository) ApplyGrant(ctx context.Context, in GrantInput) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tx := range r.txs {
		if tx.PaymentMethod == in.PaymentMethod && tx.PaymentID == in.PaymentID {
			return false, nil
		}
	}
	user, ok := r.users[in.UserID]
	if !ok {
		return false, ErrUserNotFound
	}
	if r.failGrantInsert {
		// Simulates a mid-transaction failure: nothing is mutated.
		return false, errors.New("simulated write failure")
	}
	user.Credits += in.Credits
	r.nextID++
	r.txs = append(r.txs, models.CreditTransaction{
		ID:            r.nextID,
		UserID:        in.UserID,
		AmountCents:   in.AmountCents,
		Credits:       in.Credits,
		Status:        models.TransactionStatusCompleted,
		PaymentID:     in.PaymentID,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     time.Now(),
	})
	return true, nil
}

func (r *fakeRepository) GetBalance(ctx context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	return user.Credits, nil
}

func (r *fakeRepository) AdjustBalance(ctx context.Context, userID uint, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	if user.Credits+delta < 0 {
		return ErrInsufficientCredits
	}
	user.Credits += delta
	return nil
}

func (r *fakeRepository) ListTransactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CreditTransaction
	for _, tx := range r.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeRepository) GetTransaction(ctx context.Context, id uint) (*models.CreditTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.txs {
		if r.txs[i].ID == id {
			tx := r.txs[i]
			return &tx, nil
		}
	}
	return nil, ErrTransactionNotFound
}

func (r *fakeRepository) CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	req.ID = r.nextID
	req.CreatedAt = time.Now()
	r.refunds = append(r.refunds, *req)
	return nil
}

func (r *fakeRepository) ListRefundRequestsByUser(ctx context.Context, userID uint) ([]models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RefundRequest
	for _, req := range r.refunds {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListPendingRefundRequests(ctx context.Context) ([]models.RefundRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RefundRequest
	for _, req := range r.refunds {
		if req.Status == models.RefundStatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRepository) ApproveRefundRequest(ctx context.Context, requestID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.refunds {
		if r.refunds[i].ID != requestID {
			continue
		}
		req := &r.refunds[i]
		if req.Status != models.RefundStatusPending {
			return ErrRefundAlreadyResolved
		}
		user, ok := r.users[req.UserID]
		if !ok || user.Credits < req.Credits {
			return ErrInsufficientCredits
		}
		user.Credits -= req.Credits
		for j := range r.txs {
			if r.txs[j].ID == req.TransactionID {
				r.txs[j].Status = models.TransactionStatusRefunded
			}
		}
		req.Status = models.RefundStatusApproved
		return nil
	}
	return ErrRefundRequestNotFound
}

func (r *fakeRepository) RejectRefundRequest(ctx context.Context, requestID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.refunds {
		if r.refunds[i].ID == requestID && r.refunds[i].Status == models.RefundStatusPending {
			r.refunds[i].Status = models.RefundStatusRejected
			return nil
		}
	}
	return ErrRefundRequestNotFound
}

func (r *fakeRepository) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := in.Provider + "/" + in.ProviderEventID
	if stored, ok := r.events[key]; ok {
		return false, stored, nil
	}
	r.nextID++
	stored := &models.WebhookEvent{
		ID:              r.nextID,
		Provider:        in.Provider,
		ProviderEventID: in.ProviderEventID,
		EventType:       in.EventType,
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
		CreatedAt:       time.Now(),
	}
	r.events[key] = stored
	return true, stored, nil
}

func (r *fakeRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingErr error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.events {
		if stored.ID == id {
			now := time.Now()
			stored.ProcessedAt = &now
			stored.ProcessingError = ""
			if processingErr != nil {
				stored.ProcessingError = processingErr.Error()
			}
			return nil
		}
	}
	return fmt.Errorf("webhook event %d not found", id)
}

func (r *fakeRepository) UpdateSubscription(ctx context.Context, userID uint, in SubscriptionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.SubscriptionID = in.SubscriptionID
	user.SubscriptionStatus = in.Status
	user.SubscriptionPlan = in.Plan
	user.CurrentPeriodEnd = in.CurrentPeriodEnd
	user.CancelAtPeriodEnd = in.CancelAtPeriodEnd
	return nil
}

func (r *fakeRepository) ClearSubscription(ctx context.Context, userID uint, subscriptionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if (userID != 0 && user.ID == userID) || (userID == 0 && user.SubscriptionID == subscriptionID) {
			user.SubscriptionID = ""
			user.SubscriptionStatus = ""
			user.SubscriptionPlan = ""
			user.CurrentPeriodEnd = nil
			user.CancelAtPeriodEnd = false
			return nil
		}
	}
	return ErrUserNotFound
}

func (r *fakeRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (r *fakeRepository) transactionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.txs)
}

// fakeGateway records checkout calls and serves canned sessions.
type fakeGateway struct {
	createCalls []*stripe.CheckoutSessionParams
	createErr   error
	session     *stripe.CheckoutSession
	getErr      error
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.createCalls = append(g.createCalls, params)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &stripe.CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.com/pay/cs_test_123"}, nil
}

func (g *fakeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	if g.getErr != nil {
		return nil, g.getErr
	}
	return g.session, nil
}

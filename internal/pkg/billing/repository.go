package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/revivapix/RevivaPix/app/models"
)

// Repository provides the ledger operations used by the billing service. The
// grant path must be transactional: read-then-separate-write is subject to
// lost updates under concurrent reconciliations for the same user.
type Repository interface {
	ApplyGrant(ctx context.Context, in GrantInput) (bool, error)
	GetBalance(ctx context.Context, userID uint) (int64, error)
	AdjustBalance(ctx context.Context, userID uint, delta int64) error
	ListTransactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error)
	GetTransaction(ctx context.Context, id uint) (*models.CreditTransaction, error)
	CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error
	ListRefundRequestsByUser(ctx context.Context, userID uint) ([]models.RefundRequest, error)
	ListPendingRefundRequests(ctx context.Context) ([]models.RefundRequest, error)
	ApproveRefundRequest(ctx context.Context, requestID uint) error
	RejectRefundRequest(ctx context.Context, requestID uint) error
	RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingErr error) error
	UpdateSubscription(ctx context.Context, userID uint, in SubscriptionUpdate) error
	ClearSubscription(ctx context.Context, userID uint, subscriptionID string) error
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// ApplyGrant applies one idempotent credit grant: within a single DB
// transaction it checks for an existing transaction with the same provider
// payment id, atomically increments the balance and inserts the transaction
// row. The unique index on (payment_method, payment_id) is the backstop for
// races between concurrent deliveries; a duplicate-key rollback is reported
// as already-applied, not as an error.
func (r *gormRepository) ApplyGrant(ctx context.Context, in GrantInput) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.CreditTransaction{}).
			Where("payment_method = ? AND payment_id = ?", in.PaymentMethod, in.PaymentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		res := tx.Model(&models.User{}).
			Where("id = ?", in.UserID).
			UpdateColumn("credits", gorm.Expr("credits + ?", in.Credits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		record := models.CreditTransaction{
			UserID:        in.UserID,
			AmountCents:   in.AmountCents,
			Credits:       in.Credits,
			Status:        models.TransactionStatusCompleted,
			PaymentID:     in.PaymentID,
			PaymentMethod: in.PaymentMethod,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return applied, nil
}

func (r *gormRepository) GetBalance(ctx context.Context, userID uint) (int64, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("credits").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return user.Credits, nil
}

// AdjustBalance applies a relative credit change in one guarded statement;
// the WHERE clause keeps the balance from ever going negative.
func (r *gormRepository) AdjustBalance(ctx context.Context, userID uint, delta int64) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND credits + ? >= 0", userID, delta).
		UpdateColumn("credits", gorm.Expr("credits + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
		return ErrInsufficientCredits
	}
	return nil
}

func (r *gormRepository) ListTransactions(ctx context.Context, userID uint) ([]models.CreditTransaction, error) {
	var txs []models.CreditTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (r *gormRepository) GetTransaction(ctx context.Context, id uint) (*models.CreditTransaction, error) {
	var tx models.CreditTransaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) CreateRefundRequest(ctx context.Context, req *models.RefundRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *gormRepository) ListRefundRequestsByUser(ctx context.Context, userID uint) ([]models.RefundRequest, error) {
	var reqs []models.RefundRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) ListPendingRefundRequests(ctx context.Context) ([]models.RefundRequest, error) {
	var reqs []models.RefundRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RefundStatusPending).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

// ApproveRefundRequest debits the granted credits, marks the transaction
// refunded and the request approved as one atomic unit.
func (r *gormRepository) ApproveRefundRequest(ctx context.Context, requestID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.RefundRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRefundRequestNotFound
			}
			return err
		}
		if req.Status != models.RefundStatusPending {
			return ErrRefundAlreadyResolved
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND credits >= ?", req.UserID, req.Credits).
			UpdateColumn("credits", gorm.Expr("credits - ?", req.Credits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientCredits
		}

		if err := tx.Model(&models.CreditTransaction{}).
			Where("id = ?", req.TransactionID).
			Update("status", models.TransactionStatusRefunded).Error; err != nil {
			return err
		}

		return tx.Model(&models.RefundRequest{}).
			Where("id = ?", req.ID).
			Update("status", models.RefundStatusApproved).Error
	})
}

func (r *gormRepository) RejectRefundRequest(ctx context.Context, requestID uint) error {
	res := r.db.WithContext(ctx).Model(&models.RefundRequest{}).
		Where("id = ? AND status = ?", requestID, models.RefundStatusPending).
		Update("status", models.RefundStatusRejected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRefundRequestNotFound
	}
	return nil
}

func (r *gormRepository) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	event := &models.WebhookEvent{
		Provider:        in.Provider,
		ProviderEventID: in.ProviderEventID,
		EventType:       in.EventType,
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_event_id = ?", in.Provider, in.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingErr error) error {
	now := time.Now()
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": errMsg,
	}
	return r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) UpdateSubscription(ctx context.Context, userID uint, in SubscriptionUpdate) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"subscription_id":      in.SubscriptionID,
			"subscription_status":  in.Status,
			"subscription_plan":    in.Plan,
			"current_period_end":   in.CurrentPeriodEnd,
			"cancel_at_period_end": in.CancelAtPeriodEnd,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// The MySQL driver reports rows changed, not rows matched, so an
		// update that writes the values already stored lands here for an
		// existing user. Only a missing row is an error.
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
	}
	return nil
}

// ClearSubscription resets subscription fields, matching by user id when the
// event metadata carried one, falling back to the stored subscription id.
func (r *gormRepository) ClearSubscription(ctx context.Context, userID uint, subscriptionID string) error {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if userID != 0 {
		q = q.Where("id = ?", userID)
	} else {
		q = q.Where("subscription_id = ?", subscriptionID)
	}
	res := q.Updates(map[string]interface{}{
		"subscription_id":      "",
		"subscription_status":  "",
		"subscription_plan":    "",
		"current_period_end":   nil,
		"cancel_at_period_end": false,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Changed-rows semantics again: an already-cleared user is fine.
		cq := r.db.WithContext(ctx).Model(&models.User{})
		if userID != 0 {
			cq = cq.Where("id = ?", userID)
		} else {
			cq = cq.Where("subscription_id = ?", subscriptionID)
		}
		var count int64
		if err := cq.Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}
	}
	return nil
}

func (r *gormRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

package models

import "time"

// Payment provider constants used across billing-related models.
const (
	PaymentProviderStripe = "stripe"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusRefunded  = "refunded"
)

// CreditTransaction is one row of the append-only credit ledger history.
// Rows are immutable after creation except for the status transition to
// "refunded". The (payment_method, payment_id) unique index is the hard
// idempotency backstop against duplicate webhook deliveries.
type CreditTransaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	Credits       int64     `gorm:"not null" json:"credits"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentID     string    `gorm:"type:varchar(191);not null;index:ux_credit_transactions_payment,unique,priority:2" json:"payment_id"`
	PaymentMethod string    `gorm:"type:varchar(20);not null;index:ux_credit_transactions_payment,unique,priority:1" json:"payment_method"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

package models

import "time"

const (
	RefundStatusPending  = "pending"
	RefundStatusApproved = "approved"
	RefundStatusRejected = "rejected"
)

// RefundRequest is a user-initiated request to reverse a completed credit
// purchase. Approval debits the granted credits and marks the transaction
// refunded; both transitions happen through an administrative endpoint.
type RefundRequest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	TransactionID uint      `gorm:"not null;index" json:"transaction_id"`
	Reason        string    `gorm:"type:text" json:"reason"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	Credits       int64     `gorm:"not null" json:"credits"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

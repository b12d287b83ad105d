package models

import "time"

const (
	ProcessedImageStatusPending   = "pending"
	ProcessedImageStatusCompleted = "completed"
	ProcessedImageStatusFailed    = "failed"
)

// ProcessedImage records one restoration job: the uploaded original, the
// restored result and a small preview, stored as object keys in S3.
type ProcessedImage struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         string    `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`
	OriginalKey  string    `gorm:"type:varchar(255)" json:"original_key"`
	ProcessedKey string    `gorm:"type:varchar(255)" json:"processed_key"`
	PreviewKey   string    `gorm:"type:varchar(255)" json:"preview_key"`
	Status       string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

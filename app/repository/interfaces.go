package repository

import (
	"github.com/revivapix/RevivaPix/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateLastLogin(id uint) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ImageRepository defines the interface for restoration job records
type ImageRepository interface {
	Create(image *models.ProcessedImage) error
	GetByID(id uint) (*models.ProcessedImage, error)
	GetByUUID(uuid string) (*models.ProcessedImage, error)
	GetByUserID(userID uint, offset, limit int) ([]models.ProcessedImage, error)
	Update(image *models.ProcessedImage) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User  UserRepository
	Image ImageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:  NewUserRepository(db),
		Image: NewImageRepository(db),
	}
}

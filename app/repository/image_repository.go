package repository

import (
	"github.com/revivapix/RevivaPix/app/models"
	"gorm.io/gorm"
)

// imageRepository implements the ImageRepository interface
type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository creates a new image repository instance
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Create persists a new restoration job record
func (r *imageRepository) Create(image *models.ProcessedImage) error {
	return r.db.Create(image).Error
}

// GetByID retrieves a restoration record by its ID
func (r *imageRepository) GetByID(id uint) (*models.ProcessedImage, error) {
	var image models.ProcessedImage
	err := r.db.First(&image, id).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByUUID retrieves a restoration record by its UUID
func (r *imageRepository) GetByUUID(uuid string) (*models.ProcessedImage, error) {
	var image models.ProcessedImage
	err := r.db.Where("uuid = ?", uuid).First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetByUserID retrieves a user's restoration history, newest first
func (r *imageRepository) GetByUserID(userID uint, offset, limit int) ([]models.ProcessedImage, error) {
	var images []models.ProcessedImage
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&images).Error
	return images, err
}

// Update updates an existing restoration record
func (r *imageRepository) Update(image *models.ProcessedImage) error {
	return r.db.Save(image).Error
}

// UpdateStatus moves a restoration record to a new status
func (r *imageRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.ProcessedImage{}).Where("id = ?", id).Update("status", status).Error
}

// Delete removes a restoration record
func (r *imageRepository) Delete(id uint) error {
	return r.db.Delete(&models.ProcessedImage{}, id).Error
}

// CountByUserID returns the number of restorations for a user
func (r *imageRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProcessedImage{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
)

// Repository exposes business image persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a media repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an image row.
func (r *Repository) Create(ctx context.Context, image *models.BusinessImage) (*models.BusinessImage, error) {
	if image.ID == uuid.Nil {
		image.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// Delete removes an image row by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BusinessImage{}).Error
}

// FindByID loads an image row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BusinessImage, error) {
	var image models.BusinessImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// ListByBusiness returns all images for a listing ordered by position.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.BusinessImage, error) {
	var rows []models.BusinessImage
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// CountByBusiness returns how many images a listing already has.
func (r *Repository) CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BusinessImage{}).
		Where("business_id = ?", businessID).
		Count(&count).Error
	return count, err
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// BusinessImage records an uploaded listing photo and its storage object.
type BusinessImage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;not null;index:business_images_business_idx"`
	ObjectKey  string    `gorm:"column:object_key;not null"`
	PublicURL  *string   `gorm:"column:public_url"`
	MimeType   string    `gorm:"column:mime_type;not null"`
	Position   int       `gorm:"column:position;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

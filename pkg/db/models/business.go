package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// Business represents a listed place owned by a wallet user.
type Business struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerAddress string               `gorm:"column:owner_address;type:text;not null;index:businesses_owner_idx"`
	Name         string               `gorm:"column:name;not null"`
	Slug         string               `gorm:"column:slug;not null;uniqueIndex:businesses_slug_key"`
	Description  *string              `gorm:"column:description"`
	Categories   pq.StringArray       `gorm:"column:categories;type:text[]"`
	City         string               `gorm:"column:city;not null;index:businesses_city_idx"`
	AddressLine  *string              `gorm:"column:address_line"`
	Phone        *string              `gorm:"column:phone"`
	Website      *string              `gorm:"column:website"`
	Status       enums.BusinessStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	RatingAvg    float64              `gorm:"column:rating_avg;not null;default:0"`
	RatingCount  int                  `gorm:"column:rating_count;not null;default:0"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is a rating left by a wallet user on a business. One review per
// author per business, enforced by reviews_business_author_key.
type Review struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessID    uuid.UUID `gorm:"column:business_id;type:uuid;not null;index:reviews_business_idx;uniqueIndex:reviews_business_author_key"`
	AuthorAddress string    `gorm:"column:author_address;type:text;not null;uniqueIndex:reviews_business_author_key"`
	Rating        int       `gorm:"column:rating;not null"`
	Title         *string   `gorm:"column:title"`
	Body          *string   `gorm:"column:body"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

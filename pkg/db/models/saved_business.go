package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedBusiness links a wallet user to a bookmarked listing.
type SavedBusiness struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserAddress string    `gorm:"column:user_address;type:text;not null;index:saved_businesses_user_idx;uniqueIndex:saved_businesses_user_business_key"`
	BusinessID  uuid.UUID `gorm:"column:business_id;type:uuid;not null;index:saved_businesses_business_idx;uniqueIndex:saved_businesses_user_business_key"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

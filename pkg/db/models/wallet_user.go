package models

import (
	"time"

	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// WalletUser represents the canonical identity entity, keyed by the lowercased
// wallet address. A row is provisioned on first successful connection; there
// is no separate signup step.
type WalletUser struct {
	WalletAddress string          `gorm:"column:wallet_address;primaryKey;type:text;not null"`
	DisplayName   string          `gorm:"column:display_name;not null"`
	BusinessName  *string         `gorm:"column:business_name"`
	Role          enums.UserRole  `gorm:"column:role;type:text;not null;default:'business_owner'"`
	Verified      bool            `gorm:"column:verified;not null;default:false"`
	Email         *string         `gorm:"column:email"`
	LoginKind     enums.LoginKind `gorm:"column:login_kind;type:text;not null;default:'wallet'"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the relation name used by the auth flow.
func (WalletUser) TableName() string {
	return "wallet_users"
}

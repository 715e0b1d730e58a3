package session

import (
	"time"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// IdentityMeta carries the verified identity details available when a wallet
// connects. Email is only present for email/social login kinds.
type IdentityMeta struct {
	LoginKind enums.LoginKind
	Email     *string
}

// ProfileUpdate holds the fields a user may change on their own profile.
// Nil pointers leave the column untouched.
type ProfileUpdate struct {
	DisplayName  *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=120"`
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,max=160"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
}

// ProfileDTO is the transport shape of a wallet user.
type ProfileDTO struct {
	WalletAddress string          `json:"wallet_address"`
	DisplayName   string          `json:"display_name"`
	BusinessName  *string         `json:"business_name,omitempty"`
	Role          enums.UserRole  `json:"role"`
	Verified      bool            `json:"verified"`
	Email         *string         `json:"email,omitempty"`
	LoginKind     enums.LoginKind `json:"login_kind"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Hints is the advisory connection state exposed for UI bootstrap. It is
// never consulted for authorization decisions.
type Hints struct {
	LastWalletAddress string `json:"last_wallet_address,omitempty"`
	Authenticated     bool   `json:"authenticated"`
}

func FromModel(u *models.WalletUser) *ProfileDTO {
	if u == nil {
		return nil
	}
	return &ProfileDTO{
		WalletAddress: u.WalletAddress,
		DisplayName:   u.DisplayName,
		BusinessName:  u.BusinessName,
		Role:          u.Role,
		Verified:      u.Verified,
		Email:         u.Email,
		LoginKind:     u.LoginKind,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

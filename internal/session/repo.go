package session

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
)

// Repository exposes wallet user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a session repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByAddress retrieves the user for a lowercased wallet address.
func (r *Repository) FindByAddress(ctx context.Context, address string) (*models.WalletUser, error) {
	var user models.WalletUser
	if err := r.db.WithContext(ctx).Where("wallet_address = ?", address).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Insert persists a freshly provisioned wallet user.
func (r *Repository) Insert(ctx context.Context, user *models.WalletUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateEmail backfills the email column without touching other profile
// fields.
func (r *Repository) UpdateEmail(ctx context.Context, address string, email string) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletUser{}).
		Where("wallet_address = ?", address).
		UpdateColumn("email", email).Error
}

// UpdatePartial applies the non-nil fields of a profile update and stamps
// updated_at.
func (r *Repository) UpdatePartial(ctx context.Context, address string, update ProfileUpdate) error {
	columns := map[string]any{"updated_at": time.Now().UTC()}
	if update.DisplayName != nil {
		columns["display_name"] = *update.DisplayName
	}
	if update.BusinessName != nil {
		columns["business_name"] = *update.BusinessName
	}
	if update.Email != nil {
		columns["email"] = *update.Email
	}
	return r.db.WithContext(ctx).
		Model(&models.WalletUser{}).
		Where("wallet_address = ?", address).
		UpdateColumns(columns).Error
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/wallet"
)

const walletUsersAddressConstraint = "wallet_users_pkey"

// Service reconciles wallet connections against persisted profiles.
type Service interface {
	LookupOrProvision(ctx context.Context, address string, meta IdentityMeta) (*models.WalletUser, error)
	Refresh(ctx context.Context, address string) (*models.WalletUser, error)
	UpdateProfile(ctx context.Context, address string, update ProfileUpdate) (*models.WalletUser, error)
	Disconnect(ctx context.Context, accessID, address string) error
	ReadHints(ctx context.Context, address string) (*Hints, error)
}

type userRepository interface {
	FindByAddress(ctx context.Context, address string) (*models.WalletUser, error)
	Insert(ctx context.Context, user *models.WalletUser) error
	UpdateEmail(ctx context.Context, address string, email string) error
	UpdatePartial(ctx context.Context, address string, update ProfileUpdate) error
}

type sessionRevoker interface {
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	users     userRepository
	revoker   sessionRevoker
	hints     hintStore
	walletCfg config.WalletConfig
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a session service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionRevoker sessionRevoker
	HintStore      hintStore
	WalletConfig   config.WalletConfig
	Logger         *logger.Logger
}

// NewService constructs a session service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionRevoker == nil {
		return nil, fmt.Errorf("session revoker is required")
	}
	if params.HintStore == nil {
		return nil, fmt.Errorf("hint store is required")
	}
	return &service{
		users:     params.UserRepo,
		revoker:   params.SessionRevoker,
		hints:     params.HintStore,
		walletCfg: params.WalletConfig,
		logg:      params.Logger,
	}, nil
}

// LookupOrProvision returns the profile for a verified wallet address,
// creating it on first connection. Concurrent first connections race on the
// insert; the loser recovers by re-fetching the winner's row.
func (s *service) LookupOrProvision(ctx context.Context, address string, meta IdentityMeta) (*models.WalletUser, error) {
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}
	if !meta.LoginKind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown login kind")
	}

	user, err := s.users.FindByAddress(ctx, normalized)
	switch {
	case err == nil:
		return s.finishConnect(ctx, user, meta)
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fall through to provisioning
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "profile unavailable")
	}

	user = &models.WalletUser{
		WalletAddress: normalized,
		DisplayName:   defaultDisplayName(normalized, meta),
		Role:          enums.UserRoleBusinessOwner,
		Verified:      true,
		Email:         meta.Email,
		LoginKind:     meta.LoginKind,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if db.IsUniqueViolation(err, walletUsersAddressConstraint) {
			existing, fetchErr := s.users.FindByAddress(ctx, normalized)
			if fetchErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fetchErr, "profile unavailable")
			}
			return s.finishConnect(ctx, existing, meta)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision wallet user")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithWallet(ctx, normalized), "wallet user provisioned")
	}

	if err := s.writeConnectedHints(ctx, normalized); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "writing session hints failed")
	}

	return user, nil
}

// Refresh re-reads the persisted profile so callers never act on a stale
// in-memory copy.
func (s *service) Refresh(ctx context.Context, address string) (*models.WalletUser, error) {
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}
	user, err := s.users.FindByAddress(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "profile unavailable")
	}
	return user, nil
}

// UpdateProfile applies a partial profile change and returns the refreshed
// row.
func (s *service) UpdateProfile(ctx context.Context, address string, update ProfileUpdate) (*models.WalletUser, error) {
	if strings.TrimSpace(address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet address is required")
	}
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}
	if update.DisplayName == nil && update.BusinessName == nil && update.Email == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no profile fields to update")
	}
	if update.DisplayName != nil && strings.TrimSpace(*update.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
	}

	if err := s.users.UpdatePartial(ctx, normalized, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Refresh(ctx, normalized)
}

// Disconnect tears the session down. Every step runs even when an earlier
// one fails so no local state is left behind; step errors are aggregated.
func (s *service) Disconnect(ctx context.Context, accessID, address string) error {
	var result error

	if accessID != "" {
		if err := s.revoker.Revoke(ctx, accessID); err != nil {
			result = multierr.Append(result, fmt.Errorf("revoke session: %w", err))
		}
	}

	if address != "" {
		if err := clearHints(ctx, s.hints, address); err != nil {
			result = multierr.Append(result, fmt.Errorf("clear session hints: %w", err))
		}
	}

	if result != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, result, "disconnect incomplete")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithWallet(ctx, address), "session disconnected")
	}
	return nil
}

// ReadHints returns the advisory connection hints for an address.
func (s *service) ReadHints(ctx context.Context, address string) (*Hints, error) {
	normalized, err := wallet.NormalizeAddress(address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}
	hints, err := readHints(ctx, s.hints, normalized)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read session hints")
	}
	return hints, nil
}

// HasRole reports whether the profile holds one of the given roles. A nil
// profile never matches.
func HasRole(user *models.WalletUser, roles ...enums.UserRole) bool {
	if user == nil {
		return false
	}
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

func (s *service) finishConnect(ctx context.Context, user *models.WalletUser, meta IdentityMeta) (*models.WalletUser, error) {
	user, err := s.backfillEmail(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	if err := s.writeConnectedHints(ctx, user.WalletAddress); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "writing session hints failed")
	}
	return user, nil
}

func (s *service) backfillEmail(ctx context.Context, user *models.WalletUser, meta IdentityMeta) (*models.WalletUser, error) {
	if user.Email != nil || meta.Email == nil || strings.TrimSpace(*meta.Email) == "" {
		return user, nil
	}
	email := strings.ToLower(strings.TrimSpace(*meta.Email))
	if err := s.users.UpdateEmail(ctx, user.WalletAddress, email); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backfill email")
	}
	user.Email = &email
	return user, nil
}

func (s *service) writeConnectedHints(ctx context.Context, address string) error {
	ttl := s.walletCfg.HintTTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return writeHints(ctx, s.hints, address, ttl)
}

// defaultDisplayName synthesizes a first display name: the title-cased email
// local-part for email-backed logins, otherwise a truncated address.
func defaultDisplayName(address string, meta IdentityMeta) string {
	if meta.LoginKind.IsEmailBased() && meta.Email != nil {
		if local, _, ok := strings.Cut(*meta.Email, "@"); ok && local != "" {
			return titleCase(local)
		}
	}
	return wallet.TruncateAddress(address)
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + strings.ToLower(value[1:])
}

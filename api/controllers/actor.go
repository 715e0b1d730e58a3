package controllers

import (
	"context"

	"github.com/rgavilanm/localspot-backend/api/middleware"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// actorFromContext rebuilds the acting wallet user from the claims the auth
// middleware seeded. Returns nil when the request is unauthenticated.
func actorFromContext(ctx context.Context) *models.WalletUser {
	address := middleware.WalletAddressFromContext(ctx)
	if address == "" {
		return nil
	}
	return &models.WalletUser{
		WalletAddress: address,
		Role:          enums.UserRole(middleware.RoleFromContext(ctx)),
	}
}

package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	WalletAddress string
	Role          enums.UserRole
	LoginKind     enums.LoginKind
	JTI           string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	WalletAddress string          `json:"wallet_address"`
	Role          enums.UserRole  `json:"role"`
	LoginKind     enums.LoginKind `json:"login_kind,omitempty"`
	jwt.RegisteredClaims
}

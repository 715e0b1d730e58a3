package identity

import (
	"time"

	"github.com/rgavilanm/localspot-backend/internal/session"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// ChallengeRequest asks for a sign-in nonce for a wallet address.
type ChallengeRequest struct {
	Address string `json:"address" validate:"required"`
}

// ChallengeResponse carries the canonical message the wallet must sign.
type ChallengeResponse struct {
	Address   string    `json:"address"`
	Message   string    `json:"message"`
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyRequest presents a signed challenge. LoginKind is supplied explicitly
// by the client adapter; the server never sniffs provider shapes.
type VerifyRequest struct {
	Address   string          `json:"address" validate:"required"`
	Signature string          `json:"signature" validate:"required"`
	LoginKind enums.LoginKind `json:"login_kind" validate:"required"`
	Email     *string         `json:"email,omitempty" validate:"omitempty,email"`
}

// VerifyResponse contains the tokens and profile produced by a successful
// verification.
type VerifyResponse struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	Profile      *session.ProfileDTO `json:"profile"`
}

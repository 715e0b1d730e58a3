package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/rgavilanm/localspot-backend/internal/session"
	pkgauth "github.com/rgavilanm/localspot-backend/pkg/auth"
	authsession "github.com/rgavilanm/localspot-backend/pkg/auth/session"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/metrics"
	"github.com/rgavilanm/localspot-backend/pkg/wallet"
)

const nonceBytes = 16

const (
	stepChallenge = "challenge"
	stepVerify    = "verify"
)

// Service implements the wallet challenge/response sign-in flow.
type Service interface {
	Challenge(ctx context.Context, req ChallengeRequest) (*ChallengeResponse, error)
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error)
}

type nonceStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	ChallengeNonceKey(address string) string
}

type sessionProvisioner interface {
	LookupOrProvision(ctx context.Context, address string, meta session.IdentityMeta) (*models.WalletUser, error)
}

type refreshTokenIssuer interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

type service struct {
	nonces      nonceStore
	sessions    sessionProvisioner
	refresh     refreshTokenIssuer
	jwtCfg      config.JWTConfig
	walletCfg   config.WalletConfig
	authMetrics *metrics.AuthFlowMetrics
	logg        *logger.Logger
}

// ServiceParams bundles the dependencies required to build an identity
// service.
type ServiceParams struct {
	NonceStore     nonceStore
	SessionService sessionProvisioner
	RefreshIssuer  refreshTokenIssuer
	JWTConfig      config.JWTConfig
	WalletConfig   config.WalletConfig
	AuthMetrics    *metrics.AuthFlowMetrics
	Logger         *logger.Logger
}

// NewService constructs an identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.NonceStore == nil {
		return nil, fmt.Errorf("nonce store is required")
	}
	if params.SessionService == nil {
		return nil, fmt.Errorf("session service is required")
	}
	if params.RefreshIssuer == nil {
		return nil, fmt.Errorf("refresh issuer is required")
	}
	return &service{
		nonces:      params.NonceStore,
		sessions:    params.SessionService,
		refresh:     params.RefreshIssuer,
		jwtCfg:      params.JWTConfig,
		walletCfg:   params.WalletConfig,
		authMetrics: params.AuthMetrics,
		logg:        params.Logger,
	}, nil
}

// Challenge issues a single-use nonce for an address and returns the exact
// message the wallet must sign.
func (s *service) Challenge(ctx context.Context, req ChallengeRequest) (*ChallengeResponse, error) {
	started := time.Now()

	address, err := wallet.NormalizeAddress(req.Address)
	if err != nil {
		s.authMetrics.IncFailure(stepChallenge)
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}

	nonce, err := newNonce()
	if err != nil {
		s.authMetrics.IncFailure(stepChallenge)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate nonce")
	}

	ttl := s.walletCfg.ChallengeTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if err := s.nonces.Set(ctx, s.nonces.ChallengeNonceKey(address), nonce, ttl); err != nil {
		s.authMetrics.IncFailure(stepChallenge)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store challenge nonce")
	}

	s.authMetrics.IncSuccess(stepChallenge)
	s.authMetrics.ObserveDuration(stepChallenge, time.Since(started))

	return &ChallengeResponse{
		Address:   address,
		Message:   SignInMessage(s.walletCfg.ChallengeDomain, address, nonce),
		Nonce:     nonce,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}

// Verify checks a signed challenge, provisions the profile, and issues the
// token pair. The nonce is consumed whether or not the signature checks out.
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	started := time.Now()

	result, err := s.verify(ctx, req)
	if err != nil {
		s.authMetrics.IncFailure(stepVerify)
		return nil, err
	}

	s.authMetrics.IncSuccess(stepVerify)
	s.authMetrics.ObserveDuration(stepVerify, time.Since(started))
	return result, nil
}

func (s *service) verify(ctx context.Context, req VerifyRequest) (*VerifyResponse, error) {
	address, err := wallet.NormalizeAddress(req.Address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid wallet address")
	}
	if !req.LoginKind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown login kind")
	}
	if strings.TrimSpace(req.Signature) == "" {
		// Absent signing capability is never treated as signed.
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature is required")
	}

	nonce, err := s.nonces.GetDel(ctx, s.nonces.ChallengeNonceKey(address))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "challenge expired or not issued")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume challenge nonce")
	}

	message := SignInMessage(s.walletCfg.ChallengeDomain, address, nonce)
	if err := wallet.VerifyPersonalSignature(address, message, req.Signature); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithWallet(ctx, address), "signature verification failed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "signature verification failed")
	}

	user, err := s.sessions.LookupOrProvision(ctx, address, session.IdentityMeta{
		LoginKind: req.LoginKind,
		Email:     req.Email,
	})
	if err != nil {
		return nil, err
	}

	accessID := authsession.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		WalletAddress: user.WalletAddress,
		Role:          user.Role,
		LoginKind:     user.LoginKind,
		JTI:           accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	refreshToken, err := s.refresh.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &VerifyResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      session.FromModel(user),
	}, nil
}

// SignInMessage builds the canonical sign-in message for a nonce. Challenge
// and verify must produce byte-identical text.
func SignInMessage(domain, address, nonce string) string {
	if domain == "" {
		domain = "localspot"
	}
	return fmt.Sprintf("%s wants you to sign in with your wallet:\n%s\n\nNonce: %s", domain, address, nonce)
}

func newNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

package identity

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	redislib "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/sha3"

	"github.com/rgavilanm/localspot-backend/internal/session"
	pkgauth "github.com/rgavilanm/localspot-backend/pkg/auth"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/wallet"
)

type stubNonceStore struct {
	values map[string]string
}

func newStubNonceStore() *stubNonceStore {
	return &stubNonceStore{values: map[string]string{}}
}

func (s *stubNonceStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubNonceStore) GetDel(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redislib.Nil
	}
	delete(s.values, key)
	return value, nil
}

func (s *stubNonceStore) ChallengeNonceKey(address string) string {
	return "ls:nonce:" + address
}

type stubProvisioner struct {
	lastMeta session.IdentityMeta
	err      error
}

func (s *stubProvisioner) LookupOrProvision(_ context.Context, address string, meta session.IdentityMeta) (*models.WalletUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.lastMeta = meta
	return &models.WalletUser{
		WalletAddress: address,
		DisplayName:   wallet.TruncateAddress(address),
		Role:          enums.UserRoleBusinessOwner,
		Verified:      true,
		Email:         meta.Email,
		LoginKind:     meta.LoginKind,
	}, nil
}

type stubRefreshIssuer struct {
	token string
	err   error
}

func (s *stubRefreshIssuer) Generate(_ context.Context, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "localspot",
		ExpirationMinutes: 30,
	}
}

func buildTestService(t *testing.T) (Service, *stubNonceStore, *stubProvisioner) {
	t.Helper()
	nonces := newStubNonceStore()
	provisioner := &stubProvisioner{}
	svc, err := NewService(ServiceParams{
		NonceStore:     nonces,
		SessionService: provisioner,
		RefreshIssuer:  &stubRefreshIssuer{token: "refresh-token"},
		JWTConfig:      testJWTConfig(),
		WalletConfig:   config.WalletConfig{ChallengeDomain: "localspot.app", ChallengeTTL: 5 * time.Minute},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, nonces, provisioner
}

func newTestKey(t *testing.T) (*secp256k1.PrivateKey, string) {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	uncompressed := priv.PubKey().SerializeUncompressed()
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(uncompressed[1:])
	digest := hasher.Sum(nil)
	return priv, "0x" + hex.EncodeToString(digest[12:])
}

func signMessage(priv *secp256k1.PrivateKey, message string) string {
	compact := secpecdsa.SignCompact(priv, wallet.PersonalSignHash([]byte(message)), false)
	sig := make([]byte, len(compact))
	copy(sig, compact[1:])
	sig[len(sig)-1] = compact[0]
	return "0x" + hex.EncodeToString(sig)
}

func TestChallengeIssuesNonce(t *testing.T) {
	svc, nonces, _ := buildTestService(t)

	resp, err := svc.Challenge(context.Background(), ChallengeRequest{Address: "0x52908400098527886E0F7030069857D2E4169EE7"})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if resp.Address != "0x52908400098527886e0f7030069857d2e4169ee7" {
		t.Fatalf("expected lowercased address, got %s", resp.Address)
	}
	if resp.Nonce == "" {
		t.Fatalf("expected nonce")
	}
	if stored := nonces.values["ls:nonce:"+resp.Address]; stored != resp.Nonce {
		t.Fatalf("expected nonce stored, got %q", stored)
	}
	if want := SignInMessage("localspot.app", resp.Address, resp.Nonce); resp.Message != want {
		t.Fatalf("expected canonical message %q, got %q", want, resp.Message)
	}
	if !resp.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry")
	}
}

func TestChallengeRejectsBadAddress(t *testing.T) {
	svc, _, _ := buildTestService(t)

	_, err := svc.Challenge(context.Background(), ChallengeRequest{Address: "not-an-address"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVerifyHappyPath(t *testing.T) {
	svc, _, provisioner := buildTestService(t)
	priv, address := newTestKey(t)

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: address})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}

	resp, err := svc.Verify(context.Background(), VerifyRequest{
		Address:   address,
		Signature: signMessage(priv, challenge.Message),
		LoginKind: enums.LoginKindWallet,
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected token pair")
	}
	if resp.Profile == nil || resp.Profile.WalletAddress != address {
		t.Fatalf("expected profile for %s, got %+v", address, resp.Profile)
	}
	if provisioner.lastMeta.LoginKind != enums.LoginKindWallet {
		t.Fatalf("expected wallet login kind forwarded")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.WalletAddress != address {
		t.Fatalf("expected wallet address claim %s, got %s", address, claims.WalletAddress)
	}
	if claims.Role != enums.UserRoleBusinessOwner {
		t.Fatalf("unexpected role claim %s", claims.Role)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti claim")
	}
}

func TestVerifyNonceIsSingleUse(t *testing.T) {
	svc, _, _ := buildTestService(t)
	priv, address := newTestKey(t)

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: address})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	sig := signMessage(priv, challenge.Message)

	if _, err := svc.Verify(context.Background(), VerifyRequest{Address: address, Signature: sig, LoginKind: enums.LoginKindWallet}); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	_, err = svc.Verify(context.Background(), VerifyRequest{Address: address, Signature: sig, LoginKind: enums.LoginKindWallet})
	if err == nil {
		t.Fatalf("expected replay rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsWrongSigner(t *testing.T) {
	svc, _, _ := buildTestService(t)
	_, address := newTestKey(t)
	otherPriv, _ := newTestKey(t)

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: address})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}

	_, err = svc.Verify(context.Background(), VerifyRequest{
		Address:   address,
		Signature: signMessage(otherPriv, challenge.Message),
		LoginKind: enums.LoginKindWallet,
	})
	if err == nil {
		t.Fatalf("expected signer mismatch rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsEmptySignature(t *testing.T) {
	svc, nonces, _ := buildTestService(t)
	_, address := newTestKey(t)

	if _, err := svc.Challenge(context.Background(), ChallengeRequest{Address: address}); err != nil {
		t.Fatalf("challenge: %v", err)
	}

	_, err := svc.Verify(context.Background(), VerifyRequest{Address: address, Signature: "  ", LoginKind: enums.LoginKindWallet})
	if err == nil {
		t.Fatalf("expected missing signature rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	// The nonce must survive a capability-absent attempt.
	if len(nonces.values) != 1 {
		t.Fatalf("expected nonce retained")
	}
}

func TestVerifyWithoutChallenge(t *testing.T) {
	svc, _, _ := buildTestService(t)
	priv, address := newTestKey(t)

	_, err := svc.Verify(context.Background(), VerifyRequest{
		Address:   address,
		Signature: signMessage(priv, "anything"),
		LoginKind: enums.LoginKindWallet,
	})
	if err == nil {
		t.Fatalf("expected missing challenge rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsUnknownLoginKind(t *testing.T) {
	svc, _, _ := buildTestService(t)
	priv, address := newTestKey(t)

	challenge, err := svc.Challenge(context.Background(), ChallengeRequest{Address: address})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}

	_, err = svc.Verify(context.Background(), VerifyRequest{
		Address:   address,
		Signature: signMessage(priv, challenge.Message),
		LoginKind: enums.LoginKind("magic-link"),
	})
	if err == nil {
		t.Fatalf("expected unknown login kind rejected")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

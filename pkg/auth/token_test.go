package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "localspot",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	address := "0x52908400098527886E0F7030069857D2E4169EE7"

	payload := AccessTokenPayload{
		WalletAddress: address,
		Role:          enums.UserRoleBusinessOwner,
		LoginKind:     enums.LoginKindGoogle,
		JTI:           "access-1",
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.WalletAddress != strings.ToLower(address) {
		t.Fatalf("wallet address must be lowercased, got %s", claims.WalletAddress)
	}
	if claims.Role != enums.UserRoleBusinessOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.LoginKind != enums.LoginKindGoogle {
		t.Fatalf("unexpected login kind %s", claims.LoginKind)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti access-1, got %s", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "localspot", ExpirationMinutes: 10}
	payload := AccessTokenPayload{
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		Role:          enums.UserRoleCustomer,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintAccessTokenRejectsBadInput(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "localspot", ExpirationMinutes: 10}

	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.UserRoleCustomer}); err == nil {
		t.Fatal("expected error for missing wallet address")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		Role:          enums.UserRole("ghost"),
	}); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		Role:          enums.UserRoleCustomer,
		LoginKind:     enums.LoginKind("carrier-pigeon"),
	}); err == nil {
		t.Fatal("expected error for unknown login kind")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "localspot", ExpirationMinutes: 10}
	payload := AccessTokenPayload{
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		Role:          enums.UserRoleCustomer,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token+"x")
	if err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "localspot", ExpirationMinutes: 1}
	payload := AccessTokenPayload{
		WalletAddress: "0xabc0000000000000000000000000000000000001",
		Role:          enums.UserRoleCustomer,
		JTI:           "expired-1",
	}

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry error")
	}

	// Logout still needs the jti of an expired token.
	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("parse expired token: %v", err)
	}
	if claims.ID != "expired-1" {
		t.Fatalf("expected jti expired-1, got %s", claims.ID)
	}
}

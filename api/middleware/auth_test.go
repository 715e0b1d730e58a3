package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/rgavilanm/localspot-backend/pkg/auth"
	"github.com/rgavilanm/localspot-backend/pkg/auth/session"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(context.Context, string) (bool, error) {
	return s.ok, s.err
}

func TestAuthRejectsMissingToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	token := mintTestToken(t, cfg, "0xabc0000000000000000000000000000000000001", enums.UserRoleBusinessOwner)

	handler := Auth(cfg, stubSessionVerifier{ok: false}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
	address := "0xabc0000000000000000000000000000000000001"
	token := mintTestToken(t, cfg, address, enums.UserRoleBusinessOwner)

	var captured struct {
		address string
		role    string
		kind    string
	}
	handler := Auth(cfg, stubSessionVerifier{ok: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.address = WalletAddressFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		captured.kind = LoginKindFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.address != address {
		t.Fatalf("expected wallet %s in context got %s", address, captured.address)
	}
	if captured.role != string(enums.UserRoleBusinessOwner) {
		t.Fatalf("expected role business_owner got %s", captured.role)
	}
	if captured.kind != string(enums.LoginKindWallet) {
		t.Fatalf("expected login kind wallet got %s", captured.kind)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, address string, role enums.UserRole) string {
	t.Helper()
	payload := pkgauth.AccessTokenPayload{
		WalletAddress: address,
		Role:          role,
		LoginKind:     enums.LoginKindWallet,
		JTI:           session.NewAccessID(),
	}
	token, err := pkgauth.MintAccessToken(cfg, time.Now().UTC(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

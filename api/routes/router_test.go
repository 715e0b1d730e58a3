package routes

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

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionManager struct{}

func (stubSessionManager) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(context.Context, string, string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(context.Context, string) error {
	return nil
}

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	jwtCfg := config.JWTConfig{Secret: "router-secret", Issuer: "localspot", ExpirationMinutes: 30}
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: jwtCfg,
	}

	return NewRouter(RouterParams{
		Config:  cfg,
		DB:      stubPinger{},
		Session: stubSessionManager{},
	}), jwtCfg
}

func TestHealthLiveReachable(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-LocalSpot-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-LocalSpot-Env"))
	}
}

func TestHealthReadySkipsUnwiredDependencies(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPublicBrowseDoesNotRequireAuth(t *testing.T) {
	router, _ := testRouter(t)

	// Service is nil so the controller reports 500, not 401: the route is
	// reachable without credentials.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/businesses/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Fatalf("public search must not demand credentials")
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router, _ := testRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me/"},
		{http.MethodGet, "/api/v1/me/saved/"},
		{http.MethodPost, "/api/v1/businesses/"},
		{http.MethodPatch, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6"},
		{http.MethodDelete, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6"},
		{http.MethodPost, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6/reviews/"},
		{http.MethodPost, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6/images/presign"},
		{http.MethodPost, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6/images/"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestBusinessMutationsRoutedWithCredentials(t *testing.T) {
	router, jwtCfg := testRouter(t)

	token, err := pkgauth.MintAccessToken(jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		WalletAddress: "0xaaa0000000000000000000000000000000000002",
		Role:          enums.UserRoleBusinessOwner,
		JTI:           session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	// A bearer token must carry the request past routing and auth; anything
	// but 404/405/401 proves the mutation routes resolve to their handlers.
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/businesses/"},
		{http.MethodPatch, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6"},
		{http.MethodPost, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6/reviews/"},
		{http.MethodPost, "/api/v1/businesses/7d9ad1ce-7a93-4b33-a33f-60e7aa1f34c6/images/presign"},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		switch rec.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed, http.StatusUnauthorized:
			t.Fatalf("%s %s: handler unreachable, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestOwnListingsRequireOwnerRole(t *testing.T) {
	router, jwtCfg := testRouter(t)

	token, err := pkgauth.MintAccessToken(jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		WalletAddress: "0xaaa0000000000000000000000000000000000001",
		Role:          enums.UserRoleCustomer,
		JTI:           session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/businesses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer role must not list owned businesses, got %d", rec.Code)
	}
}

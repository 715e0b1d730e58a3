package businesses

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

type stubBusinessRepo struct {
	byID      map[uuid.UUID]*models.Business
	bySlug    map[string]*models.Business
	createErr error
	// slugConflicts triggers one unique violation before accepting.
	slugConflicts int
	lastListQuery listQuery
	listResult    *ListResult
}

func newStubBusinessRepo() *stubBusinessRepo {
	return &stubBusinessRepo{
		byID:       map[uuid.UUID]*models.Business{},
		bySlug:     map[string]*models.Business{},
		listResult: &ListResult{},
	}
}

func (r *stubBusinessRepo) Create(_ context.Context, business *models.Business) (*models.Business, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.slugConflicts > 0 {
		r.slugConflicts--
		return nil, errors.New(`duplicate key value violates unique constraint "businesses_slug_key"`)
	}
	if _, ok := r.bySlug[business.Slug]; ok {
		return nil, errors.New(`duplicate key value violates unique constraint "businesses_slug_key"`)
	}
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	copied := *business
	r.byID[business.ID] = &copied
	r.bySlug[business.Slug] = &copied
	return business, nil
}

func (r *stubBusinessRepo) Update(_ context.Context, business *models.Business) (*models.Business, error) {
	copied := *business
	r.byID[business.ID] = &copied
	return business, nil
}

func (r *stubBusinessRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *stubBusinessRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Business, error) {
	if business, ok := r.byID[id]; ok {
		copied := *business
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBusinessRepo) FindBySlug(_ context.Context, slug string) (*models.Business, error) {
	if business, ok := r.bySlug[slug]; ok {
		copied := *business
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBusinessRepo) List(_ context.Context, query listQuery) (*ListResult, error) {
	r.lastListQuery = query
	return r.listResult, nil
}

func buildTestService(t *testing.T) (Service, *stubBusinessRepo) {
	t.Helper()
	repo := newStubBusinessRepo()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func ownerActor() *models.WalletUser {
	return &models.WalletUser{
		WalletAddress: "0xaaa0000000000000000000000000000000000001",
		Role:          enums.UserRoleBusinessOwner,
	}
}

func adminActor() *models.WalletUser {
	return &models.WalletUser{
		WalletAddress: "0xadd0000000000000000000000000000000000001",
		Role:          enums.UserRoleAdmin,
	}
}

func customerActor() *models.WalletUser {
	return &models.WalletUser{
		WalletAddress: "0xccc0000000000000000000000000000000000001",
		Role:          enums.UserRoleCustomer,
	}
}

func TestCreateBusiness(t *testing.T) {
	svc, repo := buildTestService(t)

	dto, err := svc.Create(context.Background(), ownerActor(), CreateBusinessRequest{
		Name:       "The Corner Bakery & Café",
		City:       "Lisbon",
		Categories: []string{"Bakery", " bakery ", "Coffee"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "the-corner-bakery-caf" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
	if dto.Status != enums.BusinessStatusDraft {
		t.Fatalf("expected draft default, got %s", dto.Status)
	}
	if len(dto.Categories) != 2 || dto.Categories[0] != "bakery" || dto.Categories[1] != "coffee" {
		t.Fatalf("expected deduped lowercase categories, got %v", dto.Categories)
	}
	if dto.OwnerAddress != ownerActor().WalletAddress {
		t.Fatalf("expected owner set, got %s", dto.OwnerAddress)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected one row persisted")
	}
}

func TestCreateBusinessRetriesSlugCollision(t *testing.T) {
	svc, repo := buildTestService(t)
	repo.slugConflicts = 1

	dto, err := svc.Create(context.Background(), ownerActor(), CreateBusinessRequest{
		Name: "Corner Bakery",
		City: "Lisbon",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug == "corner-bakery" {
		t.Fatalf("expected suffixed slug after collision, got %q", dto.Slug)
	}
	if len(dto.Slug) <= len("corner-bakery") {
		t.Fatalf("expected suffixed slug, got %q", dto.Slug)
	}
}

func TestCreateBusinessRequiresOwnerRole(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Create(context.Background(), customerActor(), CreateBusinessRequest{Name: "Shop", City: "Porto"})
	if err == nil {
		t.Fatalf("expected forbidden")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	if _, err := svc.Create(context.Background(), nil, CreateBusinessRequest{Name: "Shop", City: "Porto"}); err == nil {
		t.Fatalf("expected unauthorized for nil actor")
	}
}

func TestUpdateBusinessOwnerOnly(t *testing.T) {
	svc, _ := buildTestService(t)
	owner := ownerActor()

	created, err := svc.Create(context.Background(), owner, CreateBusinessRequest{Name: "Corner Bakery", City: "Lisbon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Corner Bakery & Co"
	updated, err := svc.Update(context.Background(), owner, created.ID, UpdateBusinessRequest{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}

	_, err = svc.Update(context.Background(), customerActor(), created.ID, UpdateBusinessRequest{Name: &name})
	if err == nil {
		t.Fatalf("expected forbidden for non-owner")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateBusinessSuspensionRequiresAdmin(t *testing.T) {
	svc, _ := buildTestService(t)
	owner := ownerActor()

	created, err := svc.Create(context.Background(), owner, CreateBusinessRequest{Name: "Corner Bakery", City: "Lisbon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	suspended := "suspended"
	_, err = svc.Update(context.Background(), owner, created.ID, UpdateBusinessRequest{Status: &suspended})
	if err == nil {
		t.Fatalf("expected owner blocked from suspending")
	}

	updated, err := svc.Update(context.Background(), adminActor(), created.ID, UpdateBusinessRequest{Status: &suspended})
	if err != nil {
		t.Fatalf("admin suspend: %v", err)
	}
	if updated.Status != enums.BusinessStatusSuspended {
		t.Fatalf("expected suspended, got %s", updated.Status)
	}
}

func TestDeleteBusinessAdminOverride(t *testing.T) {
	svc, repo := buildTestService(t)

	created, err := svc.Create(context.Background(), ownerActor(), CreateBusinessRequest{Name: "Corner Bakery", City: "Lisbon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), adminActor(), created.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected row removed")
	}
}

func TestGetUnknownBusiness(t *testing.T) {
	svc, _ := buildTestService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	if err == nil {
		t.Fatalf("expected not found")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchPassesFilters(t *testing.T) {
	svc, repo := buildTestService(t)

	_, err := svc.Search(context.Background(), ListFilters{Query: "bakery", City: "Lisbon"}, pagination.Params{Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.lastListQuery.Filters.Query != "bakery" {
		t.Fatalf("expected query forwarded, got %q", repo.lastListQuery.Filters.Query)
	}
	if repo.lastListQuery.OwnerAddress != "" {
		t.Fatalf("public search must not scope by owner")
	}
}

func TestListOwnScopesToActor(t *testing.T) {
	svc, repo := buildTestService(t)
	owner := ownerActor()

	_, err := svc.ListOwn(context.Background(), owner, pagination.Params{})
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if repo.lastListQuery.OwnerAddress != owner.WalletAddress {
		t.Fatalf("expected owner scope, got %q", repo.lastListQuery.OwnerAddress)
	}

	if _, err := svc.ListOwn(context.Background(), nil, pagination.Params{}); err == nil {
		t.Fatalf("expected unauthorized for nil actor")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Corner Bakery":        "corner-bakery",
		"  Café -- São João  ": "caf-s-o-jo-o",
		"!!!":                  "business",
	}
	for input, want := range cases {
		if got := slugify(input); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

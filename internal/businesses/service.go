package businesses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/internal/session"
	"github.com/rgavilanm/localspot-backend/pkg/db"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

const businessesSlugConstraint = "businesses_slug_key"

// Service exposes listing CRUD and discovery.
type Service interface {
	Create(ctx context.Context, actor *models.WalletUser, req CreateBusinessRequest) (*BusinessDTO, error)
	Update(ctx context.Context, actor *models.WalletUser, id uuid.UUID, req UpdateBusinessRequest) (*BusinessDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BusinessDTO, error)
	GetBySlug(ctx context.Context, slug string) (*BusinessDTO, error)
	Delete(ctx context.Context, actor *models.WalletUser, id uuid.UUID) error
	Search(ctx context.Context, filters ListFilters, page pagination.Params) (*ListResult, error)
	ListOwn(ctx context.Context, actor *models.WalletUser, page pagination.Params) (*ListResult, error)
}

type businessRepository interface {
	Create(ctx context.Context, business *models.Business) (*models.Business, error)
	Update(ctx context.Context, business *models.Business) (*models.Business, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	FindBySlug(ctx context.Context, slug string) (*models.Business, error)
	List(ctx context.Context, query listQuery) (*ListResult, error)
}

type service struct {
	repo businessRepository
	logg *logger.Logger
}

// ServiceParams bundles the dependencies required to build a businesses
// service.
type ServiceParams struct {
	Repo   businessRepository
	Logger *logger.Logger
}

// NewService constructs a businesses service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	return &service{repo: params.Repo, logg: params.Logger}, nil
}

// Create registers a listing owned by the acting wallet user.
func (s *service) Create(ctx context.Context, actor *models.WalletUser, req CreateBusinessRequest) (*BusinessDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !session.HasRole(actor, enums.UserRoleBusinessOwner, enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business owner role required")
	}

	status := enums.BusinessStatusDraft
	if req.Status != nil {
		parsed, err := enums.ParseBusinessStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}

	business := &models.Business{
		OwnerAddress: actor.WalletAddress,
		Name:         strings.TrimSpace(req.Name),
		Slug:         slugify(req.Name),
		Description:  req.Description,
		Categories:   categoriesValue(normalizeCategories(req.Categories)),
		City:         strings.TrimSpace(req.City),
		AddressLine:  req.AddressLine,
		Phone:        req.Phone,
		Website:      req.Website,
		Status:       status,
	}

	created, err := s.repo.Create(ctx, business)
	if db.IsUniqueViolation(err, businessesSlugConstraint) {
		business.ID = uuid.Nil
		business.Slug = uniqueSlug(slugify(req.Name))
		created, err = s.repo.Create(ctx, business)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create business")
	}

	if s.logg != nil {
		logCtx := s.logg.WithWallet(ctx, actor.WalletAddress)
		s.logg.Info(s.logg.WithBusiness(logCtx, created.ID.String()), "business created")
	}
	return FromModel(created), nil
}

// Update applies a partial edit; only the owner or an admin may edit.
func (s *service) Update(ctx context.Context, actor *models.WalletUser, id uuid.UUID, req UpdateBusinessRequest) (*BusinessDTO, error) {
	business, err := s.authorizeMutation(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		business.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		business.Description = req.Description
	}
	if req.Categories != nil {
		business.Categories = categoriesValue(normalizeCategories(*req.Categories))
	}
	if req.City != nil {
		business.City = strings.TrimSpace(*req.City)
	}
	if req.AddressLine != nil {
		business.AddressLine = req.AddressLine
	}
	if req.Phone != nil {
		business.Phone = req.Phone
	}
	if req.Website != nil {
		business.Website = req.Website
	}
	if req.Status != nil {
		status, err := enums.ParseBusinessStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		// Only admins may suspend or reinstate a suspended listing.
		if (status == enums.BusinessStatusSuspended || business.Status == enums.BusinessStatusSuspended) &&
			!session.HasRole(actor, enums.UserRoleAdmin) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required to change suspension")
		}
		business.Status = status
	}

	updated, err := s.repo.Update(ctx, business)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update business")
	}
	return FromModel(updated), nil
}

// Get loads a listing by ID.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*BusinessDTO, error) {
	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load business")
	}
	return FromModel(business), nil
}

// GetBySlug loads a listing by its public slug.
func (s *service) GetBySlug(ctx context.Context, slug string) (*BusinessDTO, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	business, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load business")
	}
	return FromModel(business), nil
}

// Delete removes a listing; only the owner or an admin may delete.
func (s *service) Delete(ctx context.Context, actor *models.WalletUser, id uuid.UUID) error {
	if _, err := s.authorizeMutation(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete business")
	}
	if s.logg != nil && actor != nil {
		logCtx := s.logg.WithWallet(ctx, actor.WalletAddress)
		s.logg.Info(s.logg.WithBusiness(logCtx, id.String()), "business deleted")
	}
	return nil
}

// Search runs the public discovery query over active listings.
func (s *service) Search(ctx context.Context, filters ListFilters, page pagination.Params) (*ListResult, error) {
	result, err := s.repo.List(ctx, listQuery{Pagination: page, Filters: filters})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search businesses")
	}
	return result, nil
}

// ListOwn returns the acting user's listings, drafts included.
func (s *service) ListOwn(ctx context.Context, actor *models.WalletUser, page pagination.Params) (*ListResult, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	result, err := s.repo.List(ctx, listQuery{Pagination: page, OwnerAddress: actor.WalletAddress})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list own businesses")
	}
	return result, nil
}

func (s *service) authorizeMutation(ctx context.Context, actor *models.WalletUser, id uuid.UUID) (*models.Business, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load business")
	}
	if business.OwnerAddress != actor.WalletAddress && !session.HasRole(actor, enums.UserRoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not the listing owner")
	}
	return business, nil
}

func normalizeCategories(categories []string) []string {
	seen := make(map[string]struct{}, len(categories))
	out := make([]string, 0, len(categories))
	for _, category := range categories {
		normalized := strings.ToLower(strings.TrimSpace(category))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

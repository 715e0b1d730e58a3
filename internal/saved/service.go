package saved

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/internal/businesses"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

// Service exposes bookmark management for wallet users.
type Service interface {
	Save(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID) error
	Unsave(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID) error
	List(ctx context.Context, actor *models.WalletUser, page pagination.Params) (PageDTO, error)
	ListIDs(ctx context.Context, actor *models.WalletUser, page pagination.Params) (IDsDTO, error)
}

// ServiceParams groups dependencies for the saved service.
type ServiceParams struct {
	SavedRepo    *Repository
	BusinessRepo *businesses.Repository
}

type service struct {
	savedRepo    *Repository
	businessRepo *businesses.Repository
}

// NewService builds a saved service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.SavedRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "saved repo is required")
	}
	if params.BusinessRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business repo is required")
	}
	return &service{
		savedRepo:    params.SavedRepo,
		businessRepo: params.BusinessRepo,
	}, nil
}

// Save bookmarks a listing. Saving twice is a no-op.
func (s *service) Save(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if _, err := s.businessRepo.FindByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load business")
	}
	if err := s.savedRepo.Add(ctx, actor.WalletAddress, businessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save business")
	}
	return nil
}

// Unsave removes the bookmark; removing a missing bookmark is a no-op.
func (s *service) Unsave(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.savedRepo.Remove(ctx, actor.WalletAddress, businessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unsave business")
	}
	return nil
}

// List returns one page of the actor's bookmarks with listing summaries.
func (s *service) List(ctx context.Context, actor *models.WalletUser, page pagination.Params) (PageDTO, error) {
	if actor == nil {
		return PageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	result, err := s.savedRepo.ListItems(ctx, actor.WalletAddress, page)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list saved businesses")
	}
	return result, nil
}

// ListIDs returns one page of the actor's bookmarked business IDs.
func (s *service) ListIDs(ctx context.Context, actor *models.WalletUser, page pagination.Params) (IDsDTO, error) {
	if actor == nil {
		return IDsDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	result, err := s.savedRepo.ListIDs(ctx, actor.WalletAddress, page)
	if err != nil {
		return IDsDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list saved business ids")
	}
	return result, nil
}

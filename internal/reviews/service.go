package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/internal/businesses"
	"github.com/rgavilanm/localspot-backend/internal/session"
	"github.com/rgavilanm/localspot-backend/pkg/db"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

const reviewsAuthorConstraint = "reviews_business_author_key"

// Service exposes review CRUD with denormalized rating upkeep.
type Service interface {
	Create(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error)
	Update(ctx context.Context, actor *models.WalletUser, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error)
	Delete(ctx context.Context, actor *models.WalletUser, reviewID uuid.UUID) error
	ListByBusiness(ctx context.Context, businessID uuid.UUID, page pagination.Params) (*ListResult, error)
}

type service struct {
	db       *gorm.DB
	reviews  *Repository
	listings *businesses.Repository
	logg     *logger.Logger
}

// ServiceParams bundles the dependencies required to build a reviews service.
type ServiceParams struct {
	DB           *gorm.DB
	ReviewRepo   *Repository
	BusinessRepo *businesses.Repository
	Logger       *logger.Logger
}

// NewService constructs a reviews service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	if params.ReviewRepo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if params.BusinessRepo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	return &service{
		db:       params.DB,
		reviews:  params.ReviewRepo,
		listings: params.BusinessRepo,
		logg:     params.Logger,
	}, nil
}

// Create inserts a review and recomputes the business aggregate in the same
// transaction. One review per author per business.
func (s *service) Create(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	if _, err := s.listings.FindByID(ctx, businessID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load business")
	}

	review := &models.Review{
		BusinessID:    businessID,
		AuthorAddress: actor.WalletAddress,
		Rating:        req.Rating,
		Title:         req.Title,
		Body:          req.Body,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.reviews.WithTx(tx).Create(ctx, review); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, tx, businessID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, reviewsAuthorConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "you already reviewed this business")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
	}

	if s.logg != nil {
		logCtx := s.logg.WithWallet(ctx, actor.WalletAddress)
		s.logg.Info(s.logg.WithBusiness(logCtx, review.BusinessID.String()), "review created")
	}
	return FromModel(review), nil
}

// Update edits the author's own review and recomputes the aggregate.
func (s *service) Update(ctx context.Context, actor *models.WalletUser, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	if review.AuthorAddress != actor.WalletAddress {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not the review author")
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
		review.Rating = *req.Rating
	}
	if req.Title != nil {
		review.Title = req.Title
	}
	if req.Body != nil {
		review.Body = req.Body
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.reviews.WithTx(tx).Update(ctx, review); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, tx, review.BusinessID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update review")
	}
	return FromModel(review), nil
}

// Delete removes a review; the author or an admin may delete. The aggregate
// is recomputed in the same transaction.
func (s *service) Delete(ctx context.Context, actor *models.WalletUser, reviewID uuid.UUID) error {
	if actor == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	review, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load review")
	}
	if review.AuthorAddress != actor.WalletAddress && !session.HasRole(actor, enums.UserRoleAdmin) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not the review author")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviews.WithTx(tx).Delete(ctx, reviewID); err != nil {
			return err
		}
		return s.recomputeAggregate(ctx, tx, review.BusinessID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete review")
	}
	return nil
}

// ListByBusiness returns one page of reviews for a listing.
func (s *service) ListByBusiness(ctx context.Context, businessID uuid.UUID, page pagination.Params) (*ListResult, error) {
	result, err := s.reviews.ListByBusiness(ctx, businessID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return result, nil
}

func (s *service) recomputeAggregate(ctx context.Context, tx *gorm.DB, businessID uuid.UUID) error {
	avg, count, err := s.reviews.WithTx(tx).RatingAggregate(ctx, businessID)
	if err != nil {
		return err
	}
	rounded := decimal.NewFromFloat(avg).Round(2).InexactFloat64()
	return s.listings.WithTx(tx).UpdateRatingAggregate(ctx, businessID, rounded, count)
}

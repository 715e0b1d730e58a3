package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

// Repository exposes review persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reviews repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new review.
func (r *Repository) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Update persists the full review row.
func (r *Repository) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	if err := r.db.WithContext(ctx).Save(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes a review by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{}).Error
}

// FindByID loads a review by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByBusinessAndAuthor loads the single review an author left on a
// business.
func (r *Repository) FindByBusinessAndAuthor(ctx context.Context, businessID uuid.UUID, author string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		First(&review, "business_id = ? AND author_address = ?", businessID, author).
		Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByBusiness returns one cursor page of reviews, newest first.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID, page pagination.Params) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(page.Limit)
	limitWithBuffer := pagination.FetchLimit(page.Limit)

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Review{}).Where("business_id = ?", businessID)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Review
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	results := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		results = append(results, *FromModel(&rows[i]))
	}
	return &ListResult{Reviews: results, NextCursor: nextCursor}, nil
}

// RatingAggregate computes the live average and count for a business.
func (r *Repository) RatingAggregate(ctx context.Context, businessID uuid.UUID) (float64, int, error) {
	var row struct {
		Avg   *float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("AVG(rating) AS avg, COUNT(*) AS count").
		Where("business_id = ?", businessID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	avg := 0.0
	if row.Avg != nil {
		avg = *row.Avg
	}
	return avg, int(row.Count), nil
}

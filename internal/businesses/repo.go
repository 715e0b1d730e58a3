package businesses

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

// Repository exposes business persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a businesses repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new listing.
func (r *Repository) Create(ctx context.Context, business *models.Business) (*models.Business, error) {
	if business.ID == uuid.Nil {
		business.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, err
	}
	return business, nil
}

// Update persists the full listing row.
func (r *Repository) Update(ctx context.Context, business *models.Business) (*models.Business, error) {
	if err := r.db.WithContext(ctx).Save(business).Error; err != nil {
		return nil, err
	}
	return business, nil
}

// Delete removes a listing by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Business{}).Error
}

// FindByID loads a listing by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// FindBySlug loads a listing by its unique slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// UpdateRatingAggregate overwrites the denormalized review aggregate.
func (r *Repository) UpdateRatingAggregate(ctx context.Context, id uuid.UUID, avg float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"rating_avg":   avg,
			"rating_count": count,
		}).Error
}

// List runs the cursor-paginated discovery query.
func (r *Repository) List(ctx context.Context, query listQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.FetchLimit(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Business{})

	if query.OwnerAddress != "" {
		qb = qb.Where("owner_address = ?", query.OwnerAddress)
	} else {
		qb = qb.Where("status = ?", enums.BusinessStatusActive)
	}

	filter := query.Filters
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.Category != "" {
		qb = categoryFilter(r.db, qb, strings.ToLower(strings.TrimSpace(filter.Category)))
	}
	if filter.City != "" {
		qb = qb.Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(filter.City)))
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Business
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	results := make([]BusinessDTO, 0, len(rows))
	for i := range rows {
		results = append(results, *FromModel(&rows[i]))
	}

	return &ListResult{
		Businesses: results,
		NextCursor: nextCursor,
	}, nil
}

// categoryFilter matches a category against the text[] column. Postgres gets
// the native ANY predicate; sqlite holds the serialized pq array literal, so
// the match runs over its element boundaries (plain and quoted forms).
func categoryFilter(db *gorm.DB, qb *gorm.DB, category string) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return qb.Where("? = ANY(categories)", category)
	}
	elements := "(',' || TRIM(categories, '{}') || ',')"
	return qb.Where(
		elements+" LIKE ? OR "+elements+" LIKE ?",
		"%,"+category+",%",
		"%,\""+category+"\",%",
	)
}

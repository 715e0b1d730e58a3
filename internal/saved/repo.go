package saved

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

// Repository encapsulates saved-business persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a saved repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add inserts a bookmark and ignores duplicates.
func (r *Repository) Add(ctx context.Context, userAddress string, businessID uuid.UUID) error {
	if userAddress == "" || businessID == uuid.Nil {
		return gorm.ErrInvalidValue
	}
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO saved_businesses (id, user_address, business_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_address, business_id) DO NOTHING`,
			uuid.New(), userAddress, businessID, time.Now().UTC()).
		Error
}

// Remove deletes the bookmark if it exists.
func (r *Repository) Remove(ctx context.Context, userAddress string, businessID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_address = ? AND business_id = ?", userAddress, businessID).
		Delete(&models.SavedBusiness{}).
		Error
}

type savedRecord struct {
	SavedID     uuid.UUID
	SavedAt     time.Time
	BusinessID  uuid.UUID
	Name        string
	Slug        string
	City        string
	Status      enums.BusinessStatus
	RatingAvg   float64
	RatingCount int
}

// ListItems returns one cursor page of bookmarks joined with listing
// summaries, newest bookmark first.
func (r *Repository) ListItems(ctx context.Context, userAddress string, page pagination.Params) (PageDTO, error) {
	pageSize := pagination.NormalizeLimit(page.Limit)
	limitWithBuffer := pagination.FetchLimit(page.Limit)

	cursor, err := pagination.ParseCursor(strings.TrimSpace(page.Cursor))
	if err != nil {
		return PageDTO{}, err
	}

	qb := r.db.WithContext(ctx).
		Table("saved_businesses sb").
		Select(strings.Join([]string{
			"sb.id AS saved_id",
			"sb.created_at AS saved_at",
			"b.id AS business_id",
			"b.name",
			"b.slug",
			"b.city",
			"b.status",
			"b.rating_avg",
			"b.rating_count",
		}, ", ")).
		Joins("JOIN businesses b ON b.id = sb.business_id").
		Where("sb.user_address = ?", userAddress)

	if cursor != nil {
		qb = qb.Where("(sb.created_at < ?) OR (sb.created_at = ? AND sb.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []savedRecord
	if err := qb.Order("sb.created_at DESC").Order("sb.id DESC").Limit(limitWithBuffer).Scan(&records).Error; err != nil {
		return PageDTO{}, err
	}

	nextCursor := ""
	if len(records) > pageSize {
		records = records[:pageSize]
		last := records[len(records)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.SavedAt, ID: last.SavedID}.Encode()
	}

	items := make([]SavedBusinessDTO, 0, len(records))
	for _, record := range records {
		items = append(items, SavedBusinessDTO{
			ID:      record.SavedID,
			SavedAt: record.SavedAt,
			Business: BusinessSummary{
				ID:          record.BusinessID,
				Name:        record.Name,
				Slug:        record.Slug,
				City:        record.City,
				Status:      record.Status,
				RatingAvg:   record.RatingAvg,
				RatingCount: record.RatingCount,
			},
		})
	}

	return PageDTO{Items: items, NextCursor: nextCursor}, nil
}

// ListIDs returns one cursor page of saved business IDs.
func (r *Repository) ListIDs(ctx context.Context, userAddress string, page pagination.Params) (IDsDTO, error) {
	pageSize := pagination.NormalizeLimit(page.Limit)
	limitWithBuffer := pagination.FetchLimit(page.Limit)

	cursor, err := pagination.ParseCursor(strings.TrimSpace(page.Cursor))
	if err != nil {
		return IDsDTO{}, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.SavedBusiness{}).
		Where("user_address = ?", userAddress)
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.SavedBusiness
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return IDsDTO{}, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.BusinessID)
	}
	return IDsDTO{BusinessIDs: ids, NextCursor: nextCursor}, nil
}

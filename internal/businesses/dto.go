package businesses

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

// CreateBusinessRequest captures a new listing submission.
type CreateBusinessRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=160"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Categories  []string `json:"categories,omitempty" validate:"omitempty,max=10,dive,min=2,max=60"`
	City        string   `json:"city" validate:"required,min=2,max=120"`
	AddressLine *string  `json:"address_line,omitempty" validate:"omitempty,max=240"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	Website     *string  `json:"website,omitempty" validate:"omitempty,url"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=draft active"`
}

// UpdateBusinessRequest is a partial edit; nil fields are left untouched.
type UpdateBusinessRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	Categories  *[]string `json:"categories,omitempty" validate:"omitempty,max=10,dive,min=2,max=60"`
	City        *string   `json:"city,omitempty" validate:"omitempty,min=2,max=120"`
	AddressLine *string   `json:"address_line,omitempty" validate:"omitempty,max=240"`
	Phone       *string   `json:"phone,omitempty" validate:"omitempty,max=32"`
	Website     *string   `json:"website,omitempty" validate:"omitempty,url"`
	Status      *string   `json:"status,omitempty" validate:"omitempty,oneof=draft active suspended"`
}

// ListFilters narrows the public search.
type ListFilters struct {
	Query    string
	Category string
	City     string
}

// BusinessDTO is the transport shape of a listing.
type BusinessDTO struct {
	ID           uuid.UUID            `json:"id"`
	OwnerAddress string               `json:"owner_address"`
	Name         string               `json:"name"`
	Slug         string               `json:"slug"`
	Description  *string              `json:"description,omitempty"`
	Categories   []string             `json:"categories"`
	City         string               `json:"city"`
	AddressLine  *string              `json:"address_line,omitempty"`
	Phone        *string              `json:"phone,omitempty"`
	Website      *string              `json:"website,omitempty"`
	Status       enums.BusinessStatus `json:"status"`
	RatingAvg    float64              `json:"rating_avg"`
	RatingCount  int                  `json:"rating_count"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// ListResult is one page of search results.
type ListResult struct {
	Businesses []BusinessDTO `json:"businesses"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type listQuery struct {
	Pagination pagination.Params
	Filters    ListFilters
	// OwnerAddress scopes the list to one owner's listings, drafts included.
	OwnerAddress string
}

func FromModel(b *models.Business) *BusinessDTO {
	if b == nil {
		return nil
	}
	return &BusinessDTO{
		ID:           b.ID,
		OwnerAddress: b.OwnerAddress,
		Name:         b.Name,
		Slug:         b.Slug,
		Description:  b.Description,
		Categories:   append([]string(nil), []string(b.Categories)...),
		City:         b.City,
		AddressLine:  b.AddressLine,
		Phone:        b.Phone,
		Website:      b.Website,
		Status:       b.Status,
		RatingAvg:    b.RatingAvg,
		RatingCount:  b.RatingCount,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func categoriesValue(categories []string) pq.StringArray {
	if categories == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(categories)
}

package saved

import (
	"time"

	"github.com/google/uuid"

	"github.com/rgavilanm/localspot-backend/pkg/enums"
)

// SavedBusinessDTO is one bookmark joined with its listing summary.
type SavedBusinessDTO struct {
	ID       uuid.UUID       `json:"id"`
	SavedAt  time.Time       `json:"saved_at"`
	Business BusinessSummary `json:"business"`
}

// BusinessSummary is the slim listing shape shown in saved lists.
type BusinessSummary struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Slug        string               `json:"slug"`
	City        string               `json:"city"`
	Status      enums.BusinessStatus `json:"status"`
	RatingAvg   float64              `json:"rating_avg"`
	RatingCount int                  `json:"rating_count"`
}

// PageDTO is one cursor page of saved businesses.
type PageDTO struct {
	Items      []SavedBusinessDTO `json:"items"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

// IDsDTO lists only the saved business IDs, for cheap membership checks.
type IDsDTO struct {
	BusinessIDs []uuid.UUID `json:"business_ids"`
	NextCursor  string      `json:"next_cursor,omitempty"`
}

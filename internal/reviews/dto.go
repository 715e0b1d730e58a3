package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
)

// CreateReviewRequest captures a new review submission.
type CreateReviewRequest struct {
	Rating int     `json:"rating" validate:"required,min=1,max=5"`
	Title  *string `json:"title,omitempty" validate:"omitempty,max=160"`
	Body   *string `json:"body,omitempty" validate:"omitempty,max=4000"`
}

// UpdateReviewRequest is a partial edit of the author's own review.
type UpdateReviewRequest struct {
	Rating *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Title  *string `json:"title,omitempty" validate:"omitempty,max=160"`
	Body   *string `json:"body,omitempty" validate:"omitempty,max=4000"`
}

// ReviewDTO is the transport shape of a review.
type ReviewDTO struct {
	ID            uuid.UUID `json:"id"`
	BusinessID    uuid.UUID `json:"business_id"`
	AuthorAddress string    `json:"author_address"`
	Rating        int       `json:"rating"`
	Title         *string   `json:"title,omitempty"`
	Body          *string   `json:"body,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListResult is one page of reviews for a business.
type ListResult struct {
	Reviews    []ReviewDTO `json:"reviews"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(r *models.Review) *ReviewDTO {
	if r == nil {
		return nil
	}
	return &ReviewDTO{
		ID:            r.ID,
		BusinessID:    r.BusinessID,
		AuthorAddress: r.AuthorAddress,
		Rating:        r.Rating,
		Title:         r.Title,
		Body:          r.Body,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

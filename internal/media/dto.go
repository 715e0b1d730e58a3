package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/rgavilanm/localspot-backend/pkg/db/models"
)

// PresignRequest asks for a direct-upload URL for one business image.
type PresignRequest struct {
	FileName  string `json:"file_name" validate:"required,max=240"`
	MimeType  string `json:"mime_type" validate:"required"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
}

// PresignResponse carries the signed PUT URL the browser uploads to.
type PresignResponse struct {
	ObjectKey    string    `json:"object_key"`
	SignedPutURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AttachRequest registers an uploaded object as a listing image. Header is
// the base64 of the object's first bytes so the server can sniff the real
// content type.
type AttachRequest struct {
	ObjectKey string `json:"object_key" validate:"required,max=512"`
	Header    string `json:"header,omitempty" validate:"omitempty,base64"`
	Position  int    `json:"position" validate:"min=0"`
}

// ImageDTO is the transport shape of a listing image.
type ImageDTO struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`
	ObjectKey  string    `json:"object_key"`
	PublicURL  *string   `json:"public_url,omitempty"`
	MimeType   string    `json:"mime_type"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromModel(img *models.BusinessImage) *ImageDTO {
	if img == nil {
		return nil
	}
	return &ImageDTO{
		ID:         img.ID,
		BusinessID: img.BusinessID,
		ObjectKey:  img.ObjectKey,
		PublicURL:  img.PublicURL,
		MimeType:   img.MimeType,
		Position:   img.Position,
		CreatedAt:  img.CreatedAt,
	}
}

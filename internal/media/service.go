package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/internal/session"
	"github.com/rgavilanm/localspot-backend/pkg/config"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/logger"
)

var allowedImageMimeTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

type storageClient interface {
	SignedURL(bucket, object, contentType string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
	PublicURL(bucket, object string) string
	DefaultBucket() string
}

type imageRepository interface {
	Create(ctx context.Context, image *models.BusinessImage) (*models.BusinessImage, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BusinessImage, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]models.BusinessImage, error)
	CountByBusiness(ctx context.Context, businessID uuid.UUID) (int64, error)
}

type businessLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
}

// Service exposes listing image management.
type Service interface {
	PresignUpload(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID, req PresignRequest) (*PresignResponse, error)
	Attach(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID, req AttachRequest) (*ImageDTO, error)
	List(ctx context.Context, businessID uuid.UUID) ([]ImageDTO, error)
	Delete(ctx context.Context, actor *models.WalletUser, imageID uuid.UUID) error
}

type service struct {
	images     imageRepository
	listings   businessLoader
	storage    storageClient
	storageCfg config.StorageConfig
	mediaCfg   config.MediaConfig
	logg       *logger.Logger
}

// ServiceParams bundles the dependencies required to build a media service.
type ServiceParams struct {
	ImageRepo     imageRepository
	BusinessRepo  businessLoader
	StorageClient storageClient
	StorageConfig config.StorageConfig
	MediaConfig   config.MediaConfig
	Logger        *logger.Logger
}

// NewService constructs a media service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ImageRepo == nil {
		return nil, fmt.Errorf("image repository is required")
	}
	if params.BusinessRepo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	if params.StorageClient == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	return &service{
		images:     params.ImageRepo,
		listings:   params.BusinessRepo,
		storage:    params.StorageClient,
		storageCfg: params.StorageConfig,
		mediaCfg:   params.MediaConfig,
		logg:       params.Logger,
	}, nil
}

// PresignUpload validates the declared upload and returns a signed PUT URL
// for one listing image.
func (s *service) PresignUpload(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID, req PresignRequest) (*PresignResponse, error) {
	business, err := s.authorize(ctx, actor, businessID)
	if err != nil {
		return nil, err
	}

	fileName := sanitizeFileName(req.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}

	maxBytes := int64(s.maxUploadMB()) * 1024 * 1024
	if req.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if req.SizeBytes > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d", maxBytes))
	}

	mimeType := strings.ToLower(strings.TrimSpace(req.MimeType))
	if !isAllowedImageMime(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed for listing images")
	}

	count, err := s.images.CountByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count listing images")
	}
	if int(count) >= s.maxImages() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing image limit reached")
	}

	objectKey := buildObjectKey(business.ID, fileName)
	ttl := s.uploadTTL()
	signedURL, err := s.storage.SignedURL(s.storage.DefaultBucket(), objectKey, mimeType, ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignResponse{
		ObjectKey:    objectKey,
		SignedPutURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().UTC().Add(ttl),
	}, nil
}

// Attach registers an uploaded object as a listing image. When header bytes
// are supplied the real content type is sniffed and must stay inside the
// image allow-list.
func (s *service) Attach(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID, req AttachRequest) (*ImageDTO, error) {
	business, err := s.authorize(ctx, actor, businessID)
	if err != nil {
		return nil, err
	}

	objectKey := strings.TrimSpace(req.ObjectKey)
	if objectKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object_key is required")
	}
	if !strings.HasPrefix(objectKey, objectKeyPrefix(business.ID)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object_key does not belong to this listing")
	}

	mimeType := ""
	if req.Header != "" {
		header, err := base64.StdEncoding.DecodeString(req.Header)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode header bytes")
		}
		detected := mimetype.Detect(header)
		if !isAllowedImageMime(detected.String()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded content is not an allowed image type")
		}
		mimeType = detected.String()
	}
	if mimeType == "" {
		mimeType = mimeFromExtension(objectKey)
		if mimeType == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "header bytes are required for this object")
		}
	}

	count, err := s.images.CountByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count listing images")
	}
	if int(count) >= s.maxImages() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing image limit reached")
	}

	publicURL := s.storage.PublicURL(s.storage.DefaultBucket(), objectKey)
	image := &models.BusinessImage{
		BusinessID: businessID,
		ObjectKey:  objectKey,
		PublicURL:  &publicURL,
		MimeType:   mimeType,
		Position:   req.Position,
	}
	created, err := s.images.Create(ctx, image)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach listing image")
	}

	if s.logg != nil {
		logCtx := s.logg.WithWallet(ctx, actor.WalletAddress)
		s.logg.Info(s.logg.WithBusiness(logCtx, created.BusinessID.String()), "listing image attached")
	}
	return FromModel(created), nil
}

// List returns a listing's images ordered by position.
func (s *service) List(ctx context.Context, businessID uuid.UUID) ([]ImageDTO, error) {
	rows, err := s.images.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listing images")
	}
	result := make([]ImageDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *FromModel(&rows[i]))
	}
	return result, nil
}

// Delete removes an image row and its stored object.
func (s *service) Delete(ctx context.Context, actor *models.WalletUser, imageID uuid.UUID) error {
	image, err := s.images.FindByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load image")
	}
	if _, err := s.authorize(ctx, actor, image.BusinessID); err != nil {
		return err
	}

	if err := s.images.Delete(ctx, imageID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete image row")
	}
	if err := s.storage.DeleteObject(ctx, s.storage.DefaultBucket(), image.ObjectKey); err != nil {
		// Row is gone; the orphaned object is logged, not fatal.
		if s.logg != nil {
			s.logg.Error(ctx, "delete stored object failed", err)
		}
	}
	return nil
}

func (s *service) authorize(ctx context.Context, actor *models.WalletUser, businessID uuid.UUID) (*models.Business, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	business, err := s.listings.FindByID(ctx, businessID)
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

func (s *service) maxUploadMB() int {
	if s.mediaCfg.MaxUploadMB > 0 {
		return s.mediaCfg.MaxUploadMB
	}
	return 20
}

func (s *service) maxImages() int {
	if s.mediaCfg.MaxImagesPerPlace > 0 {
		return s.mediaCfg.MaxImagesPerPlace
	}
	return 12
}

func (s *service) uploadTTL() time.Duration {
	if s.storageCfg.UploadURLExpiry > 0 {
		return s.storageCfg.UploadURLExpiry
	}
	return 15 * time.Minute
}

func isAllowedImageMime(mimeType string) bool {
	for _, candidate := range allowedImageMimeTypes {
		if strings.EqualFold(candidate, mimeType) {
			return true
		}
	}
	return false
}

func objectKeyPrefix(businessID uuid.UUID) string {
	return "media/business/" + businessID.String() + "/"
}

func buildObjectKey(businessID uuid.UUID, fileName string) string {
	return objectKeyPrefix(businessID) + uuid.NewString() + "-" + fileName
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	for _, r := range clean {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func mimeFromExtension(objectKey string) string {
	switch strings.ToLower(path.Ext(objectKey)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return ""
	}
}

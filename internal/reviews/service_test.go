package reviews

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rgavilanm/localspot-backend/internal/businesses"
	"github.com/rgavilanm/localspot-backend/pkg/db/models"
	"github.com/rgavilanm/localspot-backend/pkg/enums"
	pkgerrors "github.com/rgavilanm/localspot-backend/pkg/errors"
	"github.com/rgavilanm/localspot-backend/pkg/pagination"
)

func setupReviewsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	businessesTable := `
CREATE TABLE IF NOT EXISTS businesses (
  id TEXT PRIMARY KEY,
  owner_address TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  categories TEXT,
  city TEXT NOT NULL,
  address_line TEXT,
  phone TEXT,
  website TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  rating_avg REAL NOT NULL DEFAULT 0,
  rating_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	reviewsTable := `
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  author_address TEXT NOT NULL,
  rating INTEGER NOT NULL,
  title TEXT,
  body TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (business_id, author_address)
);`
	require.NoError(t, db.Exec(businessesTable).Error)
	require.NoError(t, db.Exec(reviewsTable).Error)
	return db
}

func mustCreateTestBusiness(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(
		`INSERT INTO businesses (id, owner_address, name, slug, city, status) VALUES (?, ?, ?, ?, ?, ?)`,
		id, "0xaaa0000000000000000000000000000000000001", "Corner Bakery", "corner-bakery-"+id.String()[:8], "Lisbon", "active",
	).Error
	require.NoError(t, err)
	return id
}

func buildReviewsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		DB:           db,
		ReviewRepo:   NewRepository(db),
		BusinessRepo: businesses.NewRepository(db),
	})
	require.NoError(t, err)
	return svc
}

func reviewer(address string) *models.WalletUser {
	return &models.WalletUser{WalletAddress: address, Role: enums.UserRoleCustomer}
}

func businessRating(t *testing.T, db *gorm.DB, id uuid.UUID) (float64, int) {
	t.Helper()
	var row struct {
		RatingAvg   float64
		RatingCount int
	}
	require.NoError(t, db.Table("businesses").Select("rating_avg, rating_count").Where("id = ?", id).Scan(&row).Error)
	return row.RatingAvg, row.RatingCount
}

func TestCreateReviewUpdatesAggregate(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)
	businessID := mustCreateTestBusiness(t, db)
	ctx := context.Background()

	_, err := svc.Create(ctx, reviewer("0xbbb0000000000000000000000000000000000001"), businessID, CreateReviewRequest{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(ctx, reviewer("0xbbb0000000000000000000000000000000000002"), businessID, CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	avg, count := businessRating(t, db, businessID)
	assert.Equal(t, 3.5, avg)
	assert.Equal(t, 2, count)
}

func TestCreateReviewOncePerAuthor(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)
	businessID := mustCreateTestBusiness(t, db)
	ctx := context.Background()
	author := reviewer("0xbbb0000000000000000000000000000000000001")

	_, err := svc.Create(ctx, author, businessID, CreateReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.Create(ctx, author, businessID, CreateReviewRequest{Rating: 1})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	avg, count := businessRating(t, db, businessID)
	assert.Equal(t, 4.0, avg)
	assert.Equal(t, 1, count)
}

func TestCreateReviewUnknownBusiness(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)

	_, err := svc.Create(context.Background(), reviewer("0xbbb0000000000000000000000000000000000001"), uuid.New(), CreateReviewRequest{Rating: 4})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateReviewAuthorOnly(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)
	businessID := mustCreateTestBusiness(t, db)
	ctx := context.Background()
	author := reviewer("0xbbb0000000000000000000000000000000000001")

	created, err := svc.Create(ctx, author, businessID, CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	newRating := 1
	updated, err := svc.Update(ctx, author, created.ID, UpdateReviewRequest{Rating: &newRating})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Rating)

	avg, _ := businessRating(t, db, businessID)
	assert.Equal(t, 1.0, avg)

	_, err = svc.Update(ctx, reviewer("0xbbb0000000000000000000000000000000000002"), created.ID, UpdateReviewRequest{Rating: &newRating})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
}

func TestDeleteReviewRecomputesAggregate(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)
	businessID := mustCreateTestBusiness(t, db)
	ctx := context.Background()
	author := reviewer("0xbbb0000000000000000000000000000000000001")

	created, err := svc.Create(ctx, author, businessID, CreateReviewRequest{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, author, created.ID))

	avg, count := businessRating(t, db, businessID)
	assert.Equal(t, 0.0, avg)
	assert.Equal(t, 0, count)
}

func TestDeleteReviewAdminOverride(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)
	businessID := mustCreateTestBusiness(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, reviewer("0xbbb0000000000000000000000000000000000001"), businessID, CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	admin := &models.WalletUser{WalletAddress: "0xadd0000000000000000000000000000000000001", Role: enums.UserRoleAdmin}
	require.NoError(t, svc.Delete(ctx, admin, created.ID))

	stranger := reviewer("0xbbb0000000000000000000000000000000000002")
	err = svc.Delete(ctx, stranger, created.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListByBusinessPaginates(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := buildReviewsService(t, db)
	businessID := mustCreateTestBusiness(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		address := fmt.Sprintf("0xbbb%037d", i)
		_, err := svc.Create(ctx, reviewer(address), businessID, CreateReviewRequest{Rating: 4})
		require.NoError(t, err)
	}

	page, err := svc.ListByBusiness(ctx, businessID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListByBusiness(ctx, businessID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Reviews, 1)
	assert.Empty(t, rest.NextCursor)
}

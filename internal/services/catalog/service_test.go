package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/database"
	"github.com/silkloom/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedItems(t *testing.T, db *gorm.DB) {
	t.Helper()
	items := []models.CatalogItem{
		{ItemID: "SKU-501", ItemName: "Banarasi Silk Saree"},
		{ItemID: "SKU-502", ItemName: "Kanjivaram Saree"},
		{ItemID: "SKU-777", ItemName: "Cotton Handloom"},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
}

func TestSearchByIDAndName(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedItems(t, db)

	byID, err := svc.Search(context.Background(), "sku-50", 0, 10)
	require.NoError(t, err)
	assert.Len(t, byID.Data, 2)
	assert.Equal(t, int64(2), byID.Total)

	byName, err := svc.Search(context.Background(), "saree", 0, 10)
	require.NoError(t, err)
	assert.Len(t, byName.Data, 2)

	none, err := svc.Search(context.Background(), "lehenga", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none.Data)

	_, err = svc.Search(context.Background(), "  ", 0, 10)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSearchPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedItems(t, db)

	page, err := svc.Search(context.Background(), "sku", 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(3), page.Total)
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedItems(t, db)

	page, err := svc.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(3), page.Total)

	rest, err := svc.List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest.Data, 1)
	assert.False(t, rest.HasMore)
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedItems(t, db)

	item, err := svc.Get(context.Background(), "SKU-501")
	require.NoError(t, err)
	assert.Equal(t, "Banarasi Silk Saree", item.ItemName)

	_, err = svc.Get(context.Background(), "SKU-999")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	seedItems(t, db)

	require.NoError(t, svc.Delete(context.Background(), "SKU-501"))

	var count int64
	require.NoError(t, db.Model(&models.CatalogItem{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// The id is free for resale after removal.
	require.NoError(t, db.Create(&models.CatalogItem{ItemID: "SKU-501", ItemName: "Restocked Saree"}).Error)

	err := svc.Delete(context.Background(), "SKU-999")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

package lead

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
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func validRequest() CreateRequest {
	return CreateRequest{
		PromoCode:        "summer10",
		CustomerUsername: "Alice",
		FullName:         "Alice Anand",
		Phone:            "9876543210",
		Email:            "Alice@Example.com",
	}
}

func TestCreateLead(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{Code: "SUMMER10"}).Error)
	svc := NewService(db)

	lead, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", lead.PromoCode)
	assert.Equal(t, "alice", lead.CustomerUsername)
	assert.Equal(t, "alice@example.com", lead.Email)
	assert.False(t, lead.IsConverted)
	assert.Nil(t, lead.ConvertedAt)
}

func TestCreateLeadDuplicate(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{Code: "SUMMER10"}).Error)
	svc := NewService(db)

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCreateLeadUnknownPromo(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	_, err := svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCreateLeadValidation(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{Code: "SUMMER10"}).Error)
	svc := NewService(db)

	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"short phone", func(r *CreateRequest) { r.Phone = "12345" }},
		{"phone with letters", func(r *CreateRequest) { r.Phone = "98765abcde" }},
		{"bad email", func(r *CreateRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *CreateRequest) { r.FullName = "  " }},
		{"missing promo", func(r *CreateRequest) { r.PromoCode = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
		})
	}
}

func TestListUnconverted(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.PromoCode{Code: "SUMMER10"}).Error)
	svc := NewService(db)

	_, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	second := validRequest()
	second.CustomerUsername = "bob"
	second.Email = "bob@example.com"
	_, err = svc.Create(context.Background(), second)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Lead{}).
		Where("customer_username = ?", "alice").
		Update("is_converted", true).Error)

	all, err := svc.ListByPromoCode(context.Background(), "SUMMER10")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	unconverted, err := svc.ListUnconverted(context.Background(), "SUMMER10")
	require.NoError(t, err)
	require.Len(t, unconverted, 1)
	assert.Equal(t, "bob", unconverted[0].CustomerUsername)
}

package leaderboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/database"
	"github.com/silkloom/backend/internal/models"
	"github.com/silkloom/backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeAdminMailer struct {
	fail     bool
	subjects []string
	bodies   []string
}

func (m *fakeAdminMailer) SendAdminNotification(subject, htmlBody string) error {
	if m.fail {
		return fmt.Errorf("smtp: connection refused")
	}
	m.subjects = append(m.subjects, subject)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

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

func newService(t *testing.T, db *gorm.DB, mailer *fakeAdminMailer) *Service {
	t.Helper()
	return NewService(db, mailer, nil, "test-secret", 24)
}

func seedEntry(t *testing.T, db *gorm.DB, username string, followers int64, total float64) {
	t.Helper()
	require.NoError(t, db.Create(&models.LeaderboardEntry{
		AffiliateUsername: username,
		FollowersCount:    followers,
		TotalPoints:       total,
	}).Error)
}

func TestMaskUsername(t *testing.T) {
	assert.Equal(t, "sar***********", maskUsername("sareequeen2024"))
	assert.Equal(t, "ali**", maskUsername("alice"))
	assert.Equal(t, "***", maskUsername("bob"))
	assert.Equal(t, "***", maskUsername("jo"))
	assert.Equal(t, "***", maskUsername(""))
}

func TestListOrderingAndMasking(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	seedEntry(t, db, "charlotte", 10000, 40)
	seedEntry(t, db, "amelia", 20000, 120)
	seedEntry(t, db, "beatrice", 5000, 80)

	page, err := svc.List(context.Background(), 0, 10)
	require.NoError(t, err)

	require.Len(t, page.Data, 3)
	assert.Equal(t, "ame***", page.Data[0].AffiliateUsername)
	assert.Equal(t, "bea*****", page.Data[1].AffiliateUsername)
	assert.Equal(t, "cha******", page.Data[2].AffiliateUsername)
	assert.Equal(t, float64(120), page.Data[0].TotalPoints)
	assert.Equal(t, int64(3), page.Total)
	assert.False(t, page.HasMore)
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	for i := 0; i < 5; i++ {
		seedEntry(t, db, fmt.Sprintf("affiliate%02d", i), 1000, float64(i*10))
	}

	page, err := svc.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(5), page.Total)

	last, err := svc.List(context.Background(), 4, 2)
	require.NoError(t, err)
	assert.Len(t, last.Data, 1)
	assert.False(t, last.HasMore)
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})
	seedEntry(t, db, "amelia", 20000, 120)

	entry, err := svc.Get(context.Background(), "  AMELIA ")
	require.NoError(t, err)
	assert.Equal(t, "amelia", entry.AffiliateUsername)
	assert.Equal(t, int64(20000), entry.FollowersCount)

	_, err = svc.Get(context.Background(), "nobody")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestPurchaseHistory(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	require.NoError(t, db.Create(&models.Purchase{
		PromoCode:         "SUMMER10",
		CustomerUsername:  "alice",
		AffiliateUsername: "amelia",
		ItemsBought:       2,
		TotalBill:         5000,
		NotificationSent:  true,
	}).Error)
	require.NoError(t, db.Create(&models.Purchase{
		PromoCode:         "FEST20",
		CustomerUsername:  "bob",
		AffiliateUsername: "amelia",
		ItemsBought:       1,
		TotalBill:         2000,
		NotificationSent:  true,
	}).Error)

	history, err := svc.PurchaseHistory(context.Background(), "amelia")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	other, err := svc.PurchaseHistory(context.Background(), "beatrice")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRequestFollowersUpdate(t *testing.T) {
	db := setupTestDB(t)
	mailer := &fakeAdminMailer{}
	svc := newService(t, db, mailer)
	seedEntry(t, db, "amelia", 20000, 0)

	require.NoError(t, svc.RequestFollowersUpdate(context.Background(), "amelia", 30000))
	require.Len(t, mailer.subjects, 1)
	assert.Contains(t, mailer.bodies[0], "amelia")
	assert.Contains(t, mailer.bodies[0], "30000")

	// No database write happens on request.
	var entry models.LeaderboardEntry
	require.NoError(t, db.Where("affiliate_username = ?", "amelia").First(&entry).Error)
	assert.Equal(t, int64(20000), entry.FollowersCount)

	err := svc.RequestFollowersUpdate(context.Background(), "amelia", -1)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	mailer.fail = true
	err = svc.RequestFollowersUpdate(context.Background(), "amelia", 30000)
	assert.Equal(t, apperrors.KindTransient, apperrors.KindOf(err))
}

func TestAdminUpdateFollowers(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})
	seedEntry(t, db, "amelia", 20000, 0)

	entry, err := svc.AdminUpdateFollowers(context.Background(), "amelia", 55000)
	require.NoError(t, err)
	assert.Equal(t, int64(55000), entry.FollowersCount)

	_, err = svc.AdminUpdateFollowers(context.Background(), "nobody", 100)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.AdminUpdateFollowers(context.Background(), "amelia", -5)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username:       " Amelia ",
		Password:       "s3cret-pass",
		Email:          "AMELIA@example.com",
		FollowersCount: 20000,
	})
	require.NoError(t, err)
	assert.Equal(t, "amelia", user.Username)
	assert.Equal(t, "amelia@example.com", user.Email)
	assert.True(t, utils.CheckPasswordHash("s3cret-pass", user.PasswordHash))

	// The leaderboard entry is created alongside the credentials.
	var entry models.LeaderboardEntry
	require.NoError(t, db.Where("affiliate_username = ?", "amelia").First(&entry).Error)
	assert.Equal(t, int64(20000), entry.FollowersCount)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "amelia",
		Password: "another-pass",
		Email:    "other@example.com",
	})
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCreateUserKeepsExistingEntry(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})
	seedEntry(t, db, "amelia", 90000, 250)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username:       "amelia",
		Password:       "s3cret-pass",
		Email:          "amelia@example.com",
		FollowersCount: 100,
	})
	require.NoError(t, err)

	var entry models.LeaderboardEntry
	require.NoError(t, db.Where("affiliate_username = ?", "amelia").First(&entry).Error)
	assert.Equal(t, int64(90000), entry.FollowersCount)
	assert.Equal(t, float64(250), entry.TotalPoints)
}

func TestDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "amelia",
		Password: "s3cret-pass",
		Email:    "amelia@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), "amelia"))

	var userCount, entryCount int64
	require.NoError(t, db.Model(&models.AffiliateUser{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&entryCount).Error)
	assert.Equal(t, int64(0), userCount)
	assert.Equal(t, int64(0), entryCount)

	err = svc.DeleteUser(context.Background(), "amelia")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestUpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "amelia",
		Password: "old-password",
		Email:    "amelia@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePassword(context.Background(), "amelia", "new-password"))

	_, err = svc.Login(context.Background(), "amelia", "old-password")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	token, err := svc.Login(context.Background(), "amelia", "new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	err = svc.UpdatePassword(context.Background(), "nobody", "whatever-pass")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newService(t, db, &fakeAdminMailer{})

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "amelia",
		Password: "s3cret-pass",
		Email:    "amelia@example.com",
	})
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "AMELIA", "s3cret-pass")
	require.NoError(t, err)

	claims, err := utils.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "amelia", claims.Username)

	_, err = svc.Login(context.Background(), "amelia", "wrong-pass")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Login(context.Background(), "nobody", "s3cret-pass")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

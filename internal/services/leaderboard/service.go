// Package leaderboard serves affiliate rankings, follower-count updates and
// the affiliate login flow. Score mutations happen only in the purchase
// workflow; this package reads scores and manages accounts.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/cache"
	"github.com/silkloom/backend/internal/models"
	"github.com/silkloom/backend/internal/utils"
	"gorm.io/gorm"
)

// AdminMailer delivers operator notifications.
type AdminMailer interface {
	SendAdminNotification(subject, htmlBody string) error
}

// Service handles leaderboard reads and affiliate account management.
type Service struct {
	db            *gorm.DB
	mailer        AdminMailer
	cache         *cache.LeaderboardCache
	jwtSecret     string
	jwtExpiration int
}

// NewService creates a leaderboard service. cache may be nil.
func NewService(db *gorm.DB, mailer AdminMailer, leaderboardCache *cache.LeaderboardCache, jwtSecret string, jwtExpirationHours int) *Service {
	return &Service{
		db:            db,
		mailer:        mailer,
		cache:         leaderboardCache,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpirationHours,
	}
}

// RankedEntry is one public leaderboard row. Usernames are masked so
// affiliates cannot identify competitors.
type RankedEntry struct {
	AffiliateUsername string  `json:"affiliate_username"`
	FollowersCount    int64   `json:"followers_count"`
	OrderPoints       float64 `json:"order_points"`
	PremiumPoints     float64 `json:"premium_points"`
	ConsistencyPoints float64 `json:"consistency_points"`
	TotalPoints       float64 `json:"total_points"`
}

// Page is a paginated, masked leaderboard listing.
type Page struct {
	Data    []RankedEntry `json:"data"`
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
	Total   int64         `json:"total"`
	HasMore bool          `json:"has_more"`
}

// maskUsername hides all but the first three characters: abcdefg -> abc****
func maskUsername(username string) string {
	if len(username) <= 3 {
		return "***"
	}
	return username[:3] + strings.Repeat("*", len(username)-3)
}

// List returns the leaderboard ordered by total points, masked and paginated.
// Pages are served from the cache when present.
func (s *Service) List(ctx context.Context, offset, limit int) (*Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	var page Page
	if hit, err := s.cache.GetPage(ctx, offset, limit, &page); err == nil && hit {
		return &page, nil
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.LeaderboardEntry{}).Count(&total).Error; err != nil {
		return nil, apperrors.Transient("counting leaderboard entries failed", err)
	}

	var entries []models.LeaderboardEntry
	if err := s.db.WithContext(ctx).
		Order("total_points DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Transient("listing leaderboard failed", err)
	}

	ranked := make([]RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = RankedEntry{
			AffiliateUsername: maskUsername(e.AffiliateUsername),
			FollowersCount:    e.FollowersCount,
			OrderPoints:       e.OrderPoints,
			PremiumPoints:     e.PremiumPoints,
			ConsistencyPoints: e.ConsistencyPoints,
			TotalPoints:       e.TotalPoints,
		}
	}

	page = Page{
		Data:    ranked,
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(ranked)) < total,
	}
	if err := s.cache.SetPage(ctx, offset, limit, page); err != nil {
		log.Printf("leaderboard cache write failed: %v", err)
	}

	return &page, nil
}

// Get returns one affiliate's unmasked entry.
func (s *Service) Get(ctx context.Context, affiliateUsername string) (*models.LeaderboardEntry, error) {
	affiliateUsername = strings.ToLower(strings.TrimSpace(affiliateUsername))
	if affiliateUsername == "" {
		return nil, apperrors.Validation("affiliate_username is required")
	}

	var entry models.LeaderboardEntry
	if err := s.db.WithContext(ctx).Where("affiliate_username = ?", affiliateUsername).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found in leaderboard")
		}
		return nil, apperrors.Transient("loading leaderboard entry failed", err)
	}
	return &entry, nil
}

// PurchaseHistory returns the sales attributed to an affiliate, newest first.
func (s *Service) PurchaseHistory(ctx context.Context, affiliateUsername string) ([]models.Purchase, error) {
	affiliateUsername = strings.ToLower(strings.TrimSpace(affiliateUsername))
	if affiliateUsername == "" {
		return nil, apperrors.Validation("affiliate_username is required")
	}

	var purchases []models.Purchase
	if err := s.db.WithContext(ctx).
		Where("affiliate_username = ?", affiliateUsername).
		Order("created_at DESC").
		Find(&purchases).Error; err != nil {
		return nil, apperrors.Transient("loading purchase history failed", err)
	}
	return purchases, nil
}

// RequestFollowersUpdate emails the operator a follower-count change request.
// The count is never written here; an admin applies it after verification.
func (s *Service) RequestFollowersUpdate(ctx context.Context, affiliateUsername string, followersCount int64) error {
	affiliateUsername = strings.ToLower(strings.TrimSpace(affiliateUsername))
	if affiliateUsername == "" {
		return apperrors.Validation("affiliate_username is required")
	}
	if followersCount < 0 {
		return apperrors.Validation("invalid followers_count")
	}

	body := fmt.Sprintf(`
	<h3>Follower Count Update Request</h3>
	<p><b>Affiliate:</b> %s</p>
	<p><b>Requested Followers Count:</b> %d</p>
	`, affiliateUsername, followersCount)

	if err := s.mailer.SendAdminNotification("Follower Count Update Request", body); err != nil {
		return apperrors.Transient("sending update request failed", err)
	}
	return nil
}

// AdminUpdateFollowers applies a verified follower count.
func (s *Service) AdminUpdateFollowers(ctx context.Context, affiliateUsername string, followersCount int64) (*models.LeaderboardEntry, error) {
	affiliateUsername = strings.ToLower(strings.TrimSpace(affiliateUsername))
	if affiliateUsername == "" {
		return nil, apperrors.Validation("affiliate_username is required")
	}
	if followersCount < 0 {
		return nil, apperrors.Validation("invalid followers_count")
	}

	var entry models.LeaderboardEntry
	if err := s.db.WithContext(ctx).Where("affiliate_username = ?", affiliateUsername).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("leaderboard user not found")
		}
		return nil, apperrors.Transient("loading leaderboard entry failed", err)
	}

	entry.FollowersCount = followersCount
	if err := s.db.WithContext(ctx).Save(&entry).Error; err != nil {
		return nil, apperrors.Transient("updating followers failed", err)
	}

	s.invalidate(ctx)
	return &entry, nil
}

// CreateUserRequest registers an affiliate account plus its leaderboard entry.
type CreateUserRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required,min=8"`
	Email          string `json:"email" binding:"required,email"`
	FollowersCount int64  `json:"followers_count"`
}

// CreateUser registers the login credentials and the leaderboard entry
// together, so the purchase path never meets a roster affiliate without one.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*models.AffiliateUser, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	userEmail := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || req.Password == "" || userEmail == "" {
		return nil, apperrors.Validation("username, password and email are required")
	}
	if req.FollowersCount < 0 {
		return nil, apperrors.Validation("invalid followers_count")
	}

	var existing models.AffiliateUser
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Transient("checking user failed", err)
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Transient("hashing password failed", err)
	}

	user := models.AffiliateUser{
		Username:     username,
		Email:        userEmail,
		PasswordHash: passwordHash,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return apperrors.Transient("creating user failed", err)
		}

		var entry models.LeaderboardEntry
		err := tx.Where("affiliate_username = ?", username).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.LeaderboardEntry{
				AffiliateUsername: username,
				FollowersCount:    req.FollowersCount,
			}
			return tx.Create(&entry).Error
		}
		return err
	})
	if txErr != nil {
		if apperrors.KindOf(txErr) != "" {
			return nil, txErr
		}
		return nil, apperrors.Transient("creating user failed", txErr)
	}

	return &user, nil
}

// DeleteUser removes an affiliate's credentials and leaderboard entry.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return apperrors.Validation("username is required")
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("username = ?", username).Delete(&models.AffiliateUser{})
		if res.Error != nil {
			return apperrors.Transient("deleting user failed", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("user not found")
		}
		return tx.Unscoped().Where("affiliate_username = ?", username).Delete(&models.LeaderboardEntry{}).Error
	})
	if txErr != nil {
		if apperrors.KindOf(txErr) != "" {
			return txErr
		}
		return apperrors.Transient("deleting user failed", txErr)
	}

	s.invalidate(ctx)
	return nil
}

// UpdatePassword replaces an affiliate's password.
func (s *Service) UpdatePassword(ctx context.Context, username, newPassword string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || newPassword == "" {
		return apperrors.Validation("username and password are required")
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperrors.Transient("hashing password failed", err)
	}

	res := s.db.WithContext(ctx).Model(&models.AffiliateUser{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if res.Error != nil {
		return apperrors.Transient("updating password failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("leaderboard cache invalidation failed: %v", err)
	}
}

// Login verifies credentials and issues a JWT.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return "", apperrors.Validation("username and password are required")
	}

	var user models.AffiliateUser
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.Validation("invalid username or password")
		}
		return "", apperrors.Transient("loading user failed", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", apperrors.Validation("invalid username or password")
	}

	token, err := utils.GenerateToken(user.Username, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		return "", apperrors.Transient("issuing token failed", err)
	}
	return token, nil
}

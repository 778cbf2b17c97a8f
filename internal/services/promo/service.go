// Package promo manages promo codes and their affiliate rosters.
package promo

import (
	"context"
	"errors"
	"strings"

	"github.com/silkloom/backend/internal/apperrors"
	"github.com/silkloom/backend/internal/models"
	"github.com/silkloom/backend/internal/scoring"
	"gorm.io/gorm"
)

// WelcomeMailer sends the onboarding email to a newly added affiliate.
type WelcomeMailer interface {
	SendAffiliateWelcome(toEmail, promoCode, affiliateUsername string, discountPercentage float64) error
}

// Service handles promo code operations.
type Service struct {
	db     *gorm.DB
	mailer WelcomeMailer
	policy scoring.Policy
}

// NewService creates a promo service.
func NewService(db *gorm.DB, mailer WelcomeMailer, policy scoring.Policy) *Service {
	return &Service{db: db, mailer: mailer, policy: policy}
}

// Page is a paginated promo code listing.
type Page struct {
	Data    []models.PromoCode `json:"data"`
	Offset  int                `json:"offset"`
	Limit   int                `json:"limit"`
	Total   int64              `json:"total"`
	HasMore bool               `json:"has_more"`
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create registers a new promo code with an empty roster.
func (s *Service) Create(ctx context.Context, code string) (*models.PromoCode, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, apperrors.Validation("promo_code is required")
	}

	var existing models.PromoCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&existing).Error
	if err == nil {
		return nil, apperrors.Conflict("promo code already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Transient("checking promo code failed", err)
	}

	promo := models.PromoCode{Code: code}
	if err := s.db.WithContext(ctx).Create(&promo).Error; err != nil {
		return nil, apperrors.Transient("creating promo code failed", err)
	}
	return &promo, nil
}

// AddAffiliateRequest attaches an affiliate to a promo code.
type AddAffiliateRequest struct {
	PromoCode          string  `json:"promo_code" binding:"required"`
	Email              string  `json:"email" binding:"required,email"`
	AffiliateUsername  string  `json:"affiliate_username" binding:"required"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// AddAffiliate appends an affiliate to the roster and emails them their promo
// details. The append and the email share one transaction: a failed welcome
// email means the affiliate was never added.
func (s *Service) AddAffiliate(ctx context.Context, req AddAffiliateRequest) (*models.PromoCode, error) {
	code := normalizeCode(req.PromoCode)
	affiliateEmail := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.AffiliateUsername))

	if code == "" || affiliateEmail == "" || username == "" {
		return nil, apperrors.Validation("promo_code, email and affiliate_username are required")
	}
	if req.DiscountPercentage < 0 || req.DiscountPercentage > 100 {
		return nil, apperrors.Validation("discount_percentage must be between 0 and 100")
	}

	var promo models.PromoCode
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Every scoring affiliate must already have a leaderboard account;
		// the purchase path aborts otherwise, so refuse the roster spot here.
		if !s.policy.IsExcluded(username) {
			var entry models.LeaderboardEntry
			err := tx.Where("affiliate_username = ?", username).First(&entry).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("affiliate not registered on the leaderboard yet; create the leaderboard user first")
			}
			if err != nil {
				return apperrors.Transient("checking leaderboard user failed", err)
			}
		}

		if err := tx.Preload("Affiliates").Where("code = ?", code).First(&promo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("promo code does not exist; cannot add affiliate")
			}
			return apperrors.Transient("loading promo code failed", err)
		}

		position := 0
		for _, detail := range promo.Affiliates {
			if detail.Email == affiliateEmail {
				return apperrors.Conflict("email %s already exists for promo code %s", affiliateEmail, code)
			}
			if detail.AffiliateUsername == username {
				return apperrors.Conflict("affiliate username already exists for this promo code")
			}
			if detail.Position >= position {
				position = detail.Position + 1
			}
		}

		detail := models.PromoAffiliate{
			PromoCodeID:        promo.ID,
			AffiliateUsername:  username,
			Email:              affiliateEmail,
			DiscountPercentage: req.DiscountPercentage,
			Position:           position,
		}
		if err := tx.Create(&detail).Error; err != nil {
			return apperrors.Transient("adding affiliate failed", err)
		}
		promo.Affiliates = append(promo.Affiliates, detail)

		if err := s.mailer.SendAffiliateWelcome(affiliateEmail, code, username, req.DiscountPercentage); err != nil {
			return apperrors.Transient("welcome email failed", err)
		}
		return nil
	})
	if txErr != nil {
		if apperrors.KindOf(txErr) != "" {
			return nil, txErr
		}
		return nil, apperrors.Transient("adding affiliate failed", txErr)
	}

	return &promo, nil
}

// UpdateDiscount changes an existing affiliate's discount percentage.
func (s *Service) UpdateDiscount(ctx context.Context, promoCode, affiliateEmail string, discountPercentage float64) (*models.PromoCode, error) {
	code := normalizeCode(promoCode)
	affiliateEmail = strings.ToLower(strings.TrimSpace(affiliateEmail))

	if code == "" || affiliateEmail == "" {
		return nil, apperrors.Validation("promo_code and email are required")
	}
	if discountPercentage < 0 || discountPercentage > 100 {
		return nil, apperrors.Validation("discount_percentage must be between 0 and 100")
	}

	var promo models.PromoCode
	if err := s.db.WithContext(ctx).Preload("Affiliates").Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("promo code does not exist; cannot update")
		}
		return nil, apperrors.Transient("loading promo code failed", err)
	}

	updated := false
	for i := range promo.Affiliates {
		if promo.Affiliates[i].Email == affiliateEmail {
			promo.Affiliates[i].DiscountPercentage = discountPercentage
			if err := s.db.WithContext(ctx).Save(&promo.Affiliates[i]).Error; err != nil {
				return nil, apperrors.Transient("updating discount failed", err)
			}
			updated = true
			break
		}
	}
	if !updated {
		return nil, apperrors.NotFound("email %s does not exist for promo code %s", affiliateEmail, code)
	}
	return &promo, nil
}

// RemovedAffiliate reports what was detached from a roster.
type RemovedAffiliate struct {
	Email              string  `json:"email"`
	DiscountPercentage float64 `json:"discount_percentage"`
}

// RemoveAffiliate detaches an affiliate from the roster by email.
func (s *Service) RemoveAffiliate(ctx context.Context, promoCode, affiliateEmail string) (*RemovedAffiliate, error) {
	code := normalizeCode(promoCode)
	affiliateEmail = strings.ToLower(strings.TrimSpace(affiliateEmail))

	if code == "" || affiliateEmail == "" {
		return nil, apperrors.Validation("promo_code and email are required")
	}

	var promo models.PromoCode
	if err := s.db.WithContext(ctx).Preload("Affiliates").Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("promo code not found")
		}
		return nil, apperrors.Transient("loading promo code failed", err)
	}

	for _, detail := range promo.Affiliates {
		if detail.Email == affiliateEmail {
			if err := s.db.WithContext(ctx).Unscoped().Delete(&models.PromoAffiliate{}, "id = ?", detail.ID).Error; err != nil {
				return nil, apperrors.Transient("removing affiliate failed", err)
			}
			return &RemovedAffiliate{Email: detail.Email, DiscountPercentage: detail.DiscountPercentage}, nil
		}
	}
	return nil, apperrors.NotFound("email not found for this promo code")
}

// Delete removes a promo code and its roster.
func (s *Service) Delete(ctx context.Context, promoCode string) (*models.PromoCode, error) {
	code := normalizeCode(promoCode)
	if code == "" {
		return nil, apperrors.Validation("promo_code is required")
	}

	var promo models.PromoCode
	if err := s.db.WithContext(ctx).Preload("Affiliates").Where("code = ?", code).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("promo code not found")
		}
		return nil, apperrors.Transient("loading promo code failed", err)
	}

	if err := s.db.WithContext(ctx).Unscoped().Select("Affiliates").Delete(&promo).Error; err != nil {
		return nil, apperrors.Transient("deleting promo code failed", err)
	}
	return &promo, nil
}

// List returns promo codes with their rosters, paginated.
func (s *Service) List(ctx context.Context, offset, limit int) (*Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.PromoCode{}).Count(&total).Error; err != nil {
		return nil, apperrors.Transient("counting promo codes failed", err)
	}

	var promos []models.PromoCode
	if err := s.db.WithContext(ctx).
		Preload("Affiliates", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("code ASC").
		Offset(offset).
		Limit(limit).
		Find(&promos).Error; err != nil {
		return nil, apperrors.Transient("listing promo codes failed", err)
	}

	return &Page{
		Data:    promos,
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: int64(offset+len(promos)) < total,
	}, nil
}

// Search finds promo codes matching a case-insensitive fragment.
func (s *Service) Search(ctx context.Context, fragment string) ([]models.PromoCode, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, apperrors.Validation("promo_code is required")
	}

	var promos []models.PromoCode
	if err := s.db.WithContext(ctx).
		Preload("Affiliates", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("UPPER(code) LIKE ?", "%"+strings.ToUpper(fragment)+"%").
		Find(&promos).Error; err != nil {
		return nil, apperrors.Transient("searching promo codes failed", err)
	}
	return promos, nil
}
